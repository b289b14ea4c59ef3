package domain

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryStatus represents the canonical delivery lifecycle state of a message.
// Provider-native vocabularies are normalized into this enum.
type DeliveryStatus string

const (
	StatusPending          DeliveryStatus = "PENDING"
	StatusWaitingForReport DeliveryStatus = "WAITING_FOR_REPORT"
	StatusSent             DeliveryStatus = "SENT"
	StatusDelivered        DeliveryStatus = "DELIVERED"
	StatusFailed           DeliveryStatus = "FAILED"
)

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusWaitingForReport, StatusSent, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further send attempt is expected for this status.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// Code returns the numeric wire code callers of the status query receive.
func (s DeliveryStatus) Code() int {
	switch s {
	case StatusWaitingForReport:
		return 200
	case StatusSent:
		return 300
	case StatusDelivered:
		return 400
	case StatusFailed:
		return 500
	default:
		return 100
	}
}

func ParseDeliveryStatusFromString(s string) (DeliveryStatus, error) {
	st := DeliveryStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid delivery status %q", ErrValidation, s)
	}
	return st, nil
}

// MaxBodyLength is the longest message body accepted for submission
// (concatenated SMS limit enforced by the provider APIs).
const MaxBodyLength = 1600

// Message is the core domain entity representing one outbound SMS.
type Message struct {
	ID                   uint64
	TenantID             string
	BridgeID             uint64
	MobileNumber         string
	Body                 string
	SubmittedOn          *time.Time
	DeliveredOn          *time.Time
	DeliveryStatus       DeliveryStatus
	DeliveryErrorMessage *string
	ExternalID           *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (m *Message) Validate() error {
	if strings.TrimSpace(m.TenantID) == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}
	if strings.TrimSpace(m.MobileNumber) == "" {
		return fmt.Errorf("%w: mobile number is required", ErrValidation)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: message body is required", ErrValidation)
	}
	if m.BridgeID == 0 {
		return fmt.Errorf("%w: bridge id is required", ErrValidation)
	}
	if !m.DeliveryStatus.IsValid() {
		return fmt.Errorf("%w: invalid delivery status %q", ErrValidation, m.DeliveryStatus)
	}

	bodyLen := len([]rune(m.Body))
	if bodyLen > MaxBodyLength {
		return fmt.Errorf("%w: message body exceeds %d characters (got %d)", ErrValidation, MaxBodyLength, bodyLen)
	}

	return nil
}

// MarkSubmitted records a successful provider hand-off: the provider-assigned
// external id and the normalized immediate send status.
func (m *Message) MarkSubmitted(externalID string, status DeliveryStatus) {
	m.ExternalID = &externalID
	m.DeliveryStatus = status
}

// MarkFailed records a captured send failure. The error text is stored
// verbatim so operators see what the provider reported.
func (m *Message) MarkFailed(reason string) {
	m.DeliveryStatus = StatusFailed
	m.DeliveryErrorMessage = &reason
}
