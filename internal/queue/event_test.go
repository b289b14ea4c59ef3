package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/messagegate/smsgate/internal/domain"
)

func TestStatusEventValidate(t *testing.T) {
	t.Parallel()

	valid := StatusEvent{
		EventID:    "evt-1",
		MessageID:  42,
		TenantID:   "tenant-1",
		Status:     domain.StatusSent,
		OccurredAt: time.Unix(1_700_000_000, 0),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*StatusEvent)
	}{
		{name: "missing event id", mutate: func(e *StatusEvent) { e.EventID = " " }},
		{name: "missing message id", mutate: func(e *StatusEvent) { e.MessageID = 0 }},
		{name: "missing tenant", mutate: func(e *StatusEvent) { e.TenantID = "" }},
		{name: "invalid status", mutate: func(e *StatusEvent) { e.Status = "WAT" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event := valid
			tt.mutate(&event)
			if err := event.Validate(); err == nil {
				t.Fatal("Validate() should fail")
			}
		})
	}
}

func TestStatusEventOmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	event := StatusEvent{
		EventID:    "evt-1",
		MessageID:  42,
		TenantID:   "tenant-1",
		Status:     domain.StatusFailed,
		OccurredAt: time.Unix(1_700_000_000, 0).UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if _, ok := decoded["externalId"]; ok {
		t.Fatal("externalId should be omitted when unset")
	}
	if _, ok := decoded["errorMessage"]; ok {
		t.Fatal("errorMessage should be omitted when unset")
	}
	if decoded["status"] != "FAILED" {
		t.Fatalf("status = %v, want FAILED", decoded["status"])
	}
}
