package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/observability"
	"github.com/messagegate/smsgate/internal/provider"
	"github.com/messagegate/smsgate/internal/queue"
	"github.com/messagegate/smsgate/internal/ratelimit"
	"github.com/messagegate/smsgate/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultQueueDepth = 256
	maxBatchSize      = 1000
)

// Dispatcher accepts message batches, persists them as PENDING, and sends
// them through provider adapters on a single background worker. One worker
// keeps sends FIFO across batches and in submission order within a batch,
// and guarantees at most one in-flight send per message. A slow provider
// call therefore delays everything queued behind it; the buffered work
// channel is the backpressure bound.
type Dispatcher struct {
	messages  repository.MessageRepository
	bridges   repository.BridgeRepository
	providers *provider.Factory
	locks     *MessageLocks
	limiter   ratelimit.RateLimiter
	events    queue.Publisher
	logger    *zap.Logger
	metrics   *observability.Metrics
	work      chan []*domain.Message
	now       func() time.Time
}

func NewDispatcher(
	messages repository.MessageRepository,
	bridges repository.BridgeRepository,
	providers *provider.Factory,
	locks *MessageLocks,
	queueDepth int,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if bridges == nil {
		return nil, fmt.Errorf("bridge repository is required")
	}
	if providers == nil {
		return nil, fmt.Errorf("provider factory is required")
	}
	if locks == nil {
		locks = NewMessageLocks()
	}
	if queueDepth < 1 {
		queueDepth = defaultQueueDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		messages:  messages,
		bridges:   bridges,
		providers: providers,
		locks:     locks,
		logger:    logger,
		work:      make(chan []*domain.Message, queueDepth),
		now:       time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

func (d *Dispatcher) SetRateLimiter(limiter ratelimit.RateLimiter) {
	if d == nil {
		return
	}
	d.limiter = limiter
}

func (d *Dispatcher) SetEventPublisher(events queue.Publisher) {
	if d == nil {
		return
	}
	d.events = events
}

// Submit stamps the batch with the submission timestamp, persists it (which
// assigns internal ids and makes it queryable as PENDING), and hands it to
// the background worker. Only the persistence step is synchronous; callers
// learn about send outcomes by polling delivery status afterward.
func (d *Dispatcher) Submit(ctx context.Context, messages []*domain.Message) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(messages) == 0 {
		return fmt.Errorf("%w: batch must include at least one message", domain.ErrValidation)
	}
	if len(messages) > maxBatchSize {
		return fmt.Errorf("%w: batch size exceeds %d", domain.ErrValidation, maxBatchSize)
	}

	submittedOn := d.now().UTC()
	for _, msg := range messages {
		if msg == nil {
			return fmt.Errorf("%w: message is required", domain.ErrValidation)
		}
		msg.DeliveryStatus = domain.StatusPending
		if err := msg.Validate(); err != nil {
			return err
		}
		ts := submittedOn
		msg.SubmittedOn = &ts
	}

	if err := d.messages.Save(ctx, messages); err != nil {
		return fmt.Errorf("failed to persist submitted batch: %w", err)
	}

	return d.Enqueue(messages)
}

// Enqueue schedules an already-persisted batch for sending without touching
// submission metadata. The bootstrap recovery task re-enters the send cycle
// through this path.
func (d *Dispatcher) Enqueue(messages []*domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	select {
	case d.work <- messages:
		if d.metrics != nil {
			d.metrics.SetDispatchQueueDepth(len(d.work))
		}
		return nil
	default:
		return fmt.Errorf("%w: dispatch queue is full", domain.ErrConflict)
	}
}

// Start runs the single send worker until context cancellation.
func (d *Dispatcher) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d.logger.Info("dispatch worker started", zap.Int("queueDepth", cap(d.work)))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatch worker stopped")
			return nil
		case batch := <-d.work:
			if d.metrics != nil {
				d.metrics.SetDispatchQueueDepth(len(d.work))
			}
			d.processBatch(ctx, batch)
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context, batch []*domain.Message) {
	for _, msg := range batch {
		if msg == nil {
			continue
		}
		if d.sendOne(ctx, msg) {
			d.publishStatusEvent(ctx, msg)
		}
	}
}

// sendOne runs one send attempt as a complete read-modify-write under the
// message lock. The enqueued copy can be stale (bootstrap reads a PENDING
// snapshot, webhooks resolve messages in flight), so eligibility is decided
// on the freshly loaded row, and the post-send state is persisted before the
// lock is released so a concurrently arriving report can never interleave
// with the write-back. Reports whether a send result was persisted.
func (d *Dispatcher) sendOne(ctx context.Context, msg *domain.Message) bool {
	unlock := d.locks.Lock(msg.ID)
	defer unlock()

	current, err := d.messages.FindByID(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			d.logger.Warn("enqueued message no longer exists",
				zap.Uint64("messageId", msg.ID),
			)
		} else {
			d.logger.Error("failed to load message before send",
				zap.Uint64("messageId", msg.ID),
				zap.Error(err),
			)
		}
		return false
	}
	*msg = *current

	if msg.DeliveryStatus != domain.StatusPending {
		d.logger.Debug("skipping send for non-pending message",
			zap.Uint64("messageId", msg.ID),
			zap.String("status", msg.DeliveryStatus.String()),
		)
		return false
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, msg.TenantID); err != nil {
			d.logger.Warn("rate limiter wait failed, sending anyway",
				zap.String("tenantId", msg.TenantID),
				zap.Error(err),
			)
		}
	}

	bridge, err := d.bridges.FindByID(ctx, msg.BridgeID)
	if err != nil {
		msg.MarkFailed(fmt.Sprintf("bridge %d unavailable: %v", msg.BridgeID, err))
		d.recordOutcome("unknown", msg)
		return d.persistSendResult(ctx, msg)
	}

	prov, err := d.providers.ForName(bridge.ProviderName)
	if err != nil {
		msg.MarkFailed(fmt.Sprintf("no provider registered for %q", bridge.ProviderName))
		d.recordOutcome("unknown", msg)
		return d.persistSendResult(ctx, msg)
	}

	sendStart := d.now()
	prov.Send(ctx, *bridge, msg)
	if d.metrics != nil {
		d.metrics.ObserveSendDuration(prov.Name(), d.now().Sub(sendStart))
	}

	d.recordOutcome(prov.Name(), msg)
	return d.persistSendResult(ctx, msg)
}

func (d *Dispatcher) persistSendResult(ctx context.Context, msg *domain.Message) bool {
	if err := d.messages.Save(ctx, []*domain.Message{msg}); err != nil {
		// The row keeps its pre-send state; the next bootstrap sweep retries.
		d.logger.Error("failed to persist send result",
			zap.Uint64("messageId", msg.ID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (d *Dispatcher) recordOutcome(providerName string, msg *domain.Message) {
	if d.metrics == nil {
		return
	}
	if msg.DeliveryStatus == domain.StatusFailed {
		d.metrics.IncMessageFailed(providerName)
		return
	}
	d.metrics.IncMessageSent(providerName)
}

func (d *Dispatcher) publishStatusEvent(ctx context.Context, msg *domain.Message) {
	if d.events == nil {
		return
	}

	event := queue.StatusEvent{
		EventID:      uuid.NewString(),
		MessageID:    msg.ID,
		TenantID:     msg.TenantID,
		ExternalID:   msg.ExternalID,
		Status:       msg.DeliveryStatus,
		ErrorMessage: msg.DeliveryErrorMessage,
		OccurredAt:   d.now().UTC(),
	}
	if err := d.events.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("failed to publish status event",
			zap.Uint64("messageId", msg.ID),
			zap.Error(err),
		)
	}
}
