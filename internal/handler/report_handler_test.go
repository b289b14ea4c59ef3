package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type stubReconciler struct {
	applyFn func(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error
}

func (s *stubReconciler) ApplyCallback(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error {
	if s.applyFn != nil {
		return s.applyFn(ctx, messageID, providerStatus, providerErrorMessage)
	}
	return nil
}

func newReportTestApp(t *testing.T, reconciler CallbackReconciler) *fiber.App {
	t.Helper()

	app := fiber.New()
	if err := RegisterReportRoutes(app, reconciler, zap.NewNop()); err != nil {
		t.Fatalf("RegisterReportRoutes() error = %v", err)
	}
	return app
}

func postReport(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	return resp
}

func TestTwilioReportAppliesCallback(t *testing.T) {
	t.Parallel()

	var gotID uint64
	var gotStatus, gotError string
	reconciler := &stubReconciler{
		applyFn: func(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error {
			gotID = messageID
			gotStatus = providerStatus
			gotError = providerErrorMessage
			return nil
		},
	}

	app := newReportTestApp(t, reconciler)

	form := url.Values{}
	form.Set("MessageStatus", "delivered")
	form.Set("ErrorMessage", "")

	resp := postReport(t, app, "/twilio/report/42", form)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotID != 42 {
		t.Fatalf("message id = %d, want 42", gotID)
	}
	if gotStatus != "delivered" || gotError != "" {
		t.Fatalf("status/error = %q/%q, want delivered and empty", gotStatus, gotError)
	}
}

func TestTwilioReportMalformedIDStillAcknowledges(t *testing.T) {
	t.Parallel()

	reconciler := &stubReconciler{
		applyFn: func(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error {
			t.Fatal("reconciler should not run for a malformed id")
			return nil
		},
	}

	app := newReportTestApp(t, reconciler)

	resp := postReport(t, app, "/twilio/report/not-a-number", url.Values{})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for a malformed id", resp.StatusCode)
	}
}

func TestTwilioReportReconcilerFailureStillAcknowledges(t *testing.T) {
	t.Parallel()

	reconciler := &stubReconciler{
		applyFn: func(ctx context.Context, messageID uint64, providerStatus string, providerErrorMessage string) error {
			return errors.New("db down")
		},
	}

	app := newReportTestApp(t, reconciler)

	form := url.Values{}
	form.Set("MessageStatus", "sent")

	resp := postReport(t, app, "/twilio/report/7", form)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when reconciliation fails", resp.StatusCode)
	}
}
