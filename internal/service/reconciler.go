package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/observability"
	"github.com/messagegate/smsgate/internal/queue"
	"github.com/messagegate/smsgate/internal/repository"
	"go.uber.org/zap"
)

// NormalizeFunc maps one provider's native status vocabulary onto the
// canonical enum. Each provider variant supplies its own.
type NormalizeFunc func(providerStatus string) domain.DeliveryStatus

// Reconciler applies asynchronous provider status reports to persisted
// messages. It shares the dispatcher's message locks so a webhook report and
// an in-flight send for the same message are serialized rather than racing
// on the row.
type Reconciler struct {
	messages  repository.MessageRepository
	locks     *MessageLocks
	normalize NormalizeFunc
	events    queue.Publisher
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewReconciler(
	messages repository.MessageRepository,
	locks *MessageLocks,
	normalize NormalizeFunc,
	logger *zap.Logger,
) (*Reconciler, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if locks == nil {
		return nil, fmt.Errorf("message locks are required")
	}
	if normalize == nil {
		return nil, fmt.Errorf("status normalizer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reconciler{
		messages:  messages,
		locks:     locks,
		normalize: normalize,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (r *Reconciler) SetMetrics(metrics *observability.Metrics) {
	if r == nil {
		return
	}
	r.metrics = metrics
}

func (r *Reconciler) SetEventPublisher(events queue.Publisher) {
	if r == nil {
		return
	}
	r.events = events
}

// ApplyCallback overwrites the message's delivery status with the normalized
// provider report. Idempotent: the same report applied twice yields the same
// state. Out-of-order reports are accepted as-is; the provider's last word
// wins. An unknown message id is logged and swallowed so the webhook layer
// can always acknowledge the provider.
func (r *Reconciler) ApplyCallback(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	unlock := r.locks.Lock(messageID)
	defer unlock()

	msg, err := r.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("delivery report for unknown message",
				zap.Uint64("messageId", messageID),
				zap.String("providerStatus", providerStatus),
			)
			if r.metrics != nil {
				r.metrics.IncDeliveryReport("unknown_message")
			}
			return nil
		}
		return fmt.Errorf("failed to load message %d: %w", messageID, err)
	}

	status := r.normalize(providerStatus)
	msg.DeliveryStatus = status

	if status == domain.StatusDelivered {
		deliveredOn := r.now().UTC()
		msg.DeliveredOn = &deliveredOn
	}
	// Error text belongs to FAILED only; a later report that moves the
	// message off FAILED takes the stale reason with it.
	if status == domain.StatusFailed {
		if reason := strings.TrimSpace(providerErrorMessage); reason != "" {
			msg.DeliveryErrorMessage = &reason
		}
	} else {
		msg.DeliveryErrorMessage = nil
	}

	if err := r.messages.Save(ctx, []*domain.Message{msg}); err != nil {
		return fmt.Errorf("failed to persist reconciled status for message %d: %w", messageID, err)
	}

	if r.metrics != nil {
		r.metrics.IncDeliveryReport("applied")
	}

	r.publishStatusEvent(ctx, msg)
	return nil
}

func (r *Reconciler) publishStatusEvent(ctx context.Context, msg *domain.Message) {
	if r.events == nil {
		return
	}

	event := queue.StatusEvent{
		EventID:      uuid.NewString(),
		MessageID:    msg.ID,
		TenantID:     msg.TenantID,
		ExternalID:   msg.ExternalID,
		Status:       msg.DeliveryStatus,
		ErrorMessage: msg.DeliveryErrorMessage,
		OccurredAt:   r.now().UTC(),
	}
	if err := r.events.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("failed to publish status event",
			zap.Uint64("messageId", msg.ID),
			zap.Error(err),
		)
	}
}
