package twilio

import (
	"testing"

	"github.com/messagegate/smsgate/internal/domain"
)

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  domain.DeliveryStatus
	}{
		{input: "queued", want: domain.StatusWaitingForReport},
		{input: "sending", want: domain.StatusWaitingForReport},
		{input: "sent", want: domain.StatusSent},
		{input: "delivered", want: domain.StatusDelivered},
		{input: "undelivered", want: domain.StatusFailed},
		{input: "failed", want: domain.StatusFailed},
		{input: "", want: domain.StatusPending},
		{input: "accepted", want: domain.StatusPending},
		// Matching is case-sensitive against Twilio's documented lowercase
		// vocabulary.
		{input: "Delivered", want: domain.StatusPending},
		{input: "SENT", want: domain.StatusPending},
		{input: " sent ", want: domain.StatusPending},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("input_"+tt.input, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeStatus(tt.input); got != tt.want {
				t.Fatalf("NormalizeStatus(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeReport(t *testing.T) {
	t.Parallel()

	got := NormalizeReport(StatusReport{MessageStatus: "undelivered", ErrorMessage: "blocked"})
	if got != domain.StatusFailed {
		t.Fatalf("NormalizeReport() = %s, want FAILED", got)
	}
}
