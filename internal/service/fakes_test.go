package service

import (
	"context"
	"sync"

	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/queue"
	"github.com/messagegate/smsgate/internal/repository"
)

// fakeMessageRepo keeps an in-memory row store so read-modify-write cycles
// against persisted state can be observed; the fn fields override individual
// operations when a test needs to force an outcome.
type fakeMessageRepo struct {
	mu    sync.Mutex
	store map[uint64]*domain.Message

	findByIDFn          func(ctx context.Context, id uint64) (*domain.Message, error)
	saveFn              func(ctx context.Context, messages []*domain.Message) error
	findByStatusPagedFn func(ctx context.Context, status domain.DeliveryStatus, page int, pageSize int) ([]*domain.Message, int, error)
	deliveryReportsFn   func(ctx context.Context, tenantID string, ids []uint64) ([]repository.DeliveryReport, error)

	savedBatches [][]*domain.Message
}

func (r *fakeMessageRepo) seed(messages ...*domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		r.store = make(map[uint64]*domain.Message)
	}
	for _, msg := range messages {
		row := *msg
		r.store[msg.ID] = &row
	}
}

func (r *fakeMessageRepo) stored(id uint64) *domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.store[id]
	if !ok {
		return nil
	}
	out := *row
	return &out
}

func (r *fakeMessageRepo) FindByID(ctx context.Context, id uint64) (*domain.Message, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	if row := r.stored(id); row != nil {
		return row, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMessageRepo) Save(ctx context.Context, messages []*domain.Message) error {
	r.mu.Lock()
	batch := make([]*domain.Message, len(messages))
	copy(batch, messages)
	r.savedBatches = append(r.savedBatches, batch)
	r.mu.Unlock()

	if r.saveFn != nil {
		if err := r.saveFn(ctx, messages); err != nil {
			return err
		}
	}

	r.seed(messages...)
	return nil
}

func (r *fakeMessageRepo) FindByStatusPaged(ctx context.Context, status domain.DeliveryStatus, page int, pageSize int) ([]*domain.Message, int, error) {
	if r.findByStatusPagedFn != nil {
		return r.findByStatusPagedFn(ctx, status, page, pageSize)
	}
	return nil, 0, nil
}

func (r *fakeMessageRepo) DeliveryReports(ctx context.Context, tenantID string, ids []uint64) ([]repository.DeliveryReport, error) {
	if r.deliveryReportsFn != nil {
		return r.deliveryReportsFn(ctx, tenantID, ids)
	}
	return nil, nil
}

func (r *fakeMessageRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.savedBatches)
}

type fakeBridgeRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*domain.Bridge, error)
}

func (r *fakeBridgeRepo) FindByID(ctx context.Context, id uint64) (*domain.Bridge, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeProvider struct {
	name   string
	sendFn func(ctx context.Context, bridge domain.Bridge, message *domain.Message)
}

func (p *fakeProvider) Name() string {
	if p.name == "" {
		return "twilio"
	}
	return p.name
}

func (p *fakeProvider) Send(ctx context.Context, bridge domain.Bridge, message *domain.Message) {
	if p.sendFn != nil {
		p.sendFn(ctx, bridge, message)
	}
}

type fakePublisher struct {
	mu        sync.Mutex
	published []queue.StatusEvent
	publishFn func(ctx context.Context, event queue.StatusEvent) error
}

func (p *fakePublisher) Publish(ctx context.Context, event queue.StatusEvent) error {
	p.mu.Lock()
	p.published = append(p.published, event)
	p.mu.Unlock()

	if p.publishFn != nil {
		return p.publishFn(ctx, event)
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) events() []queue.StatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.StatusEvent, len(p.published))
	copy(out, p.published)
	return out
}

type fakeRateLimiter struct {
	waitFn func(ctx context.Context, tenant string) error
}

func (l *fakeRateLimiter) Allow(ctx context.Context, tenant string) (bool, error) {
	return true, nil
}

func (l *fakeRateLimiter) Wait(ctx context.Context, tenant string) error {
	if l.waitFn != nil {
		return l.waitFn(ctx, tenant)
	}
	return nil
}
