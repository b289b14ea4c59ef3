package service

import (
	"context"
	"errors"
	"testing"

	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/repository"
)

func TestDeliveryStatusServiceReports(t *testing.T) {
	t.Parallel()

	externalID := "SM123"
	repo := &fakeMessageRepo{
		deliveryReportsFn: func(ctx context.Context, tenantID string, ids []uint64) ([]repository.DeliveryReport, error) {
			if tenantID != "tenant-1" {
				t.Fatalf("tenant = %q, want tenant-1", tenantID)
			}
			if len(ids) != 2 {
				t.Fatalf("ids = %v, want two ids", ids)
			}
			return []repository.DeliveryReport{
				{InternalID: ids[0], ExternalID: &externalID, StatusCode: 400},
			}, nil
		},
	}

	svc, err := NewDeliveryStatusService(repo)
	if err != nil {
		t.Fatalf("NewDeliveryStatusService() error = %v", err)
	}

	reports, err := svc.Reports(context.Background(), " tenant-1 ", []uint64{1, 2})
	if err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	if len(reports) != 1 || reports[0].StatusCode != 400 {
		t.Fatalf("reports = %+v, want one DELIVERED report", reports)
	}
}

func TestDeliveryStatusServiceValidation(t *testing.T) {
	t.Parallel()

	svc, err := NewDeliveryStatusService(&fakeMessageRepo{})
	if err != nil {
		t.Fatalf("NewDeliveryStatusService() error = %v", err)
	}

	if _, err := svc.Reports(context.Background(), "  ", []uint64{1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Reports(empty tenant) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Reports(context.Background(), "tenant-1", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Reports(no ids) error = %v, want ErrValidation", err)
	}
}
