package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/repository"
)

// DeliveryStatusService answers caller-facing status queries: for a tenant
// and a set of internal ids, the external id, delivered-on date, canonical
// status wire code, and error message per message.
type DeliveryStatusService struct {
	messages repository.MessageRepository
}

func NewDeliveryStatusService(messages repository.MessageRepository) (*DeliveryStatusService, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	return &DeliveryStatusService{messages: messages}, nil
}

func (s *DeliveryStatusService) Reports(ctx context.Context, tenantID string, ids []uint64) ([]repository.DeliveryReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", domain.ErrValidation)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one message id is required", domain.ErrValidation)
	}

	return s.messages.DeliveryReports(ctx, tenantID, ids)
}
