package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CallbackReconciler interface {
	ApplyCallback(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error
}

// ReportHandler receives provider status callbacks. Providers retry webhooks
// that do not acknowledge, so every request is answered with an empty 200,
// unknown ids and bad payloads included.
type ReportHandler struct {
	reconciler CallbackReconciler
	logger     *zap.Logger
}

func NewReportHandler(reconciler CallbackReconciler, logger *zap.Logger) (*ReportHandler, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("callback reconciler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reconciler: reconciler, logger: logger}, nil
}

func RegisterReportRoutes(router fiber.Router, reconciler CallbackReconciler, logger *zap.Logger) error {
	h, err := NewReportHandler(reconciler, logger)
	if err != nil {
		return err
	}

	router.Post("/twilio/report/:id", h.TwilioReport)
	return nil
}

// TwilioReport handles Twilio's form-encoded status callback. The message
// internal id comes from the URL path set on the original send.
func (h *ReportHandler) TwilioReport(c *fiber.Ctx) error {
	rawID := strings.TrimSpace(c.Params("id"))
	messageID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		h.logger.Warn("delivery report with malformed message id", zap.String("id", rawID))
		return c.SendStatus(fiber.StatusOK)
	}

	providerStatus := c.FormValue("MessageStatus")
	errorMessage := c.FormValue("ErrorMessage")

	if err := h.reconciler.ApplyCallback(c.Context(), messageID, providerStatus, errorMessage); err != nil {
		h.logger.Error("failed to apply delivery report",
			zap.Uint64("messageId", messageID),
			zap.String("providerStatus", providerStatus),
			zap.Error(err),
		)
	}

	return c.SendStatus(fiber.StatusOK)
}
