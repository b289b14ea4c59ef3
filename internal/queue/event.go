package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/messagegate/smsgate/internal/domain"
)

// StatusEvent is the broker payload emitted whenever a message's delivery
// status changes, both after a send attempt and after webhook reconciliation.
type StatusEvent struct {
	EventID      string                `json:"eventId"`
	MessageID    uint64                `json:"messageId"`
	TenantID     string                `json:"tenantId"`
	ExternalID   *string               `json:"externalId,omitempty"`
	Status       domain.DeliveryStatus `json:"status"`
	ErrorMessage *string               `json:"errorMessage,omitempty"`
	OccurredAt   time.Time             `json:"occurredAt"`
}

func (e StatusEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if e.MessageID == 0 {
		return fmt.Errorf("messageId is required")
	}
	if strings.TrimSpace(e.TenantID) == "" {
		return fmt.Errorf("tenantId is required")
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("invalid status %q", e.Status)
	}
	return nil
}
