package twilio

import "github.com/messagegate/smsgate/internal/domain"

// NormalizeStatus maps Twilio's message status vocabulary onto the canonical
// delivery status enum. Matching is exact and case-sensitive; anything
// outside the documented vocabulary (including an empty string) maps to
// PENDING. Used for both the immediate send result and webhook reports.
func NormalizeStatus(twilioStatus string) domain.DeliveryStatus {
	switch twilioStatus {
	case "queued", "sending":
		return domain.StatusWaitingForReport
	case "sent":
		return domain.StatusSent
	case "delivered":
		return domain.StatusDelivered
	case "undelivered", "failed":
		return domain.StatusFailed
	default:
		return domain.StatusPending
	}
}

// StatusReport is the parsed form of Twilio's status callback payload.
type StatusReport struct {
	MessageStatus string
	ErrorMessage  string
}

// NormalizeReport normalizes the full callback record.
func NormalizeReport(report StatusReport) domain.DeliveryStatus {
	return NormalizeStatus(report.MessageStatus)
}
