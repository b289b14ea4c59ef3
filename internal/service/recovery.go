package service

import (
	"context"
	"fmt"
	"time"

	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/observability"
	"github.com/messagegate/smsgate/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultRecoveryDelay    = time.Minute
	defaultRecoveryPageSize = 200
)

// RecoveryTask runs once shortly after process start and re-dispatches
// messages a previous process left in PENDING. It recovers only messages
// pending at task start: the total page count is snapshotted from the first
// page read, so PENDING messages created mid-run wait for the next restart.
type RecoveryTask struct {
	messages   repository.MessageRepository
	dispatcher *Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	delay      time.Duration
	pageSize   int
}

func NewRecoveryTask(
	messages repository.MessageRepository,
	dispatcher *Dispatcher,
	delay time.Duration,
	pageSize int,
	logger *zap.Logger,
) (*RecoveryTask, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if delay <= 0 {
		delay = defaultRecoveryDelay
	}
	if pageSize <= 0 {
		pageSize = defaultRecoveryPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecoveryTask{
		messages:   messages,
		dispatcher: dispatcher,
		logger:     logger,
		delay:      delay,
		pageSize:   pageSize,
	}, nil
}

func (t *RecoveryTask) SetMetrics(metrics *observability.Metrics) {
	if t == nil {
		return
	}
	t.metrics = metrics
}

// Start waits the startup delay, then runs the sweep once. The delay gives
// infrastructure (broker, provider DNS) time to settle after a restart; it
// is an operational tuning knob, not a correctness requirement.
func (t *RecoveryTask) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}

	pages, err := t.Run(ctx)
	if err != nil {
		return err
	}

	t.logger.Info("bootstrap recovery completed", zap.Int("pages", pages))
	return nil
}

// Run pages through persisted PENDING messages and resubmits each page
// through the dispatcher's asynchronous send path. Submission timestamps are
// not reset; only the send attempt is repeated. A failed page read aborts
// the sweep and surfaces the error; per-message send failures are captured
// on the messages themselves and do not stop the loop. Returns the total
// page count processed.
func (t *RecoveryTask) Run(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	t.logger.Info("resending pending messages on bootup")

	totalPages := 0
	for page := 0; ; page++ {
		messages, pages, err := t.messages.FindByStatusPaged(ctx, domain.StatusPending, page, t.pageSize)
		if err != nil {
			return totalPages, fmt.Errorf("failed to read pending page %d: %w", page, err)
		}
		if page == 0 {
			totalPages = pages
		}

		if len(messages) > 0 {
			if err := t.dispatcher.Enqueue(messages); err != nil {
				// Left in PENDING; the next restart's sweep picks them up.
				t.logger.Warn("failed to enqueue recovered page",
					zap.Int("page", page),
					zap.Int("count", len(messages)),
					zap.Error(err),
				)
			} else if t.metrics != nil {
				t.metrics.AddBootstrapRecovered(len(messages))
			}
		}

		if page+1 >= totalPages {
			break
		}
	}

	return totalPages, nil
}
