package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/repository"
)

type MessageDispatcher interface {
	Submit(ctx context.Context, messages []*domain.Message) error
}

type StatusReporter interface {
	Reports(ctx context.Context, tenantID string, ids []uint64) ([]repository.DeliveryReport, error)
}

type MessageHandler struct {
	dispatcher MessageDispatcher
	statuses   StatusReporter
}

func NewMessageHandler(dispatcher MessageDispatcher, statuses StatusReporter) (*MessageHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("message dispatcher is required")
	}
	if statuses == nil {
		return nil, fmt.Errorf("status reporter is required")
	}
	return &MessageHandler{dispatcher: dispatcher, statuses: statuses}, nil
}

func RegisterMessageRoutes(router fiber.Router, dispatcher MessageDispatcher, statuses StatusReporter) error {
	h, err := NewMessageHandler(dispatcher, statuses)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/messages", h.SubmitMessages)
	v1.Post("/messages/status", h.DeliveryStatus)

	return nil
}

type submitMessageItem struct {
	TenantID     string `json:"tenantId"`
	BridgeID     uint64 `json:"bridgeId"`
	MobileNumber string `json:"mobileNumber"`
	Message      string `json:"message"`
}

type submitMessagesRequest struct {
	Messages []submitMessageItem `json:"messages"`
}

type submitMessagesResponse struct {
	Accepted int      `json:"accepted"`
	IDs      []uint64 `json:"ids"`
}

type statusQueryRequest struct {
	TenantID string   `json:"tenantId"`
	IDs      []uint64 `json:"ids"`
}

type deliveryReportItem struct {
	InternalID   uint64     `json:"internalId"`
	ExternalID   *string    `json:"externalId,omitempty"`
	DeliveredOn  *time.Time `json:"deliveredOn,omitempty"`
	StatusCode   int        `json:"deliveryStatus"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

type statusQueryResponse struct {
	Reports []deliveryReportItem `json:"reports"`
}

// SubmitMessages accepts a batch for asynchronous dispatch. A 202 only means
// the batch is persisted; send outcomes are observed via the status query.
func (h *MessageHandler) SubmitMessages(c *fiber.Ctx) error {
	var req submitMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Messages) == 0 {
		return toHTTPError(fmt.Errorf("%w: messages is required", domain.ErrValidation))
	}

	messages := make([]*domain.Message, 0, len(req.Messages))
	for _, item := range req.Messages {
		messages = append(messages, &domain.Message{
			TenantID:       strings.TrimSpace(item.TenantID),
			BridgeID:       item.BridgeID,
			MobileNumber:   strings.TrimSpace(item.MobileNumber),
			Body:           item.Message,
			DeliveryStatus: domain.StatusPending,
		})
	}

	if err := h.dispatcher.Submit(c.Context(), messages); err != nil {
		return toHTTPError(err)
	}

	ids := make([]uint64, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}

	return c.Status(fiber.StatusAccepted).JSON(submitMessagesResponse{
		Accepted: len(messages),
		IDs:      ids,
	})
}

func (h *MessageHandler) DeliveryStatus(c *fiber.Ctx) error {
	var req statusQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reports, err := h.statuses.Reports(c.Context(), req.TenantID, req.IDs)
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]deliveryReportItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, deliveryReportItem{
			InternalID:   report.InternalID,
			ExternalID:   report.ExternalID,
			DeliveredOn:  report.DeliveredOn,
			StatusCode:   report.StatusCode,
			ErrorMessage: report.ErrorMessage,
		})
	}

	return c.Status(fiber.StatusOK).JSON(statusQueryResponse{Reports: items})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	default:
		return err
	}
}
