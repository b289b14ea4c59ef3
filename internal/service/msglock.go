package service

import "sync"

const lockStripes = 64

// MessageLocks serializes all read-modify-write cycles against one persisted
// message. The dispatch worker and the callback reconciler share one instance
// so a send result and a concurrently arriving webhook report for the same
// message can never interleave their load/store against the row.
//
// Striping by id keeps the structure fixed-size; two distinct ids on the same
// stripe contend but never corrupt each other's update.
type MessageLocks struct {
	stripes [lockStripes]sync.Mutex
}

func NewMessageLocks() *MessageLocks {
	return &MessageLocks{}
}

// Lock acquires the stripe for the message id and returns its unlock func.
func (l *MessageLocks) Lock(id uint64) func() {
	stripe := &l.stripes[id%lockStripes]
	stripe.Lock()
	return stripe.Unlock
}
