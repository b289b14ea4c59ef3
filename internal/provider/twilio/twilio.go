package twilio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/messagegate/smsgate/internal/domain"
	"github.com/messagegate/smsgate/internal/provider"
	"go.uber.org/zap"
)

// ProviderName is the bridge provider name this variant registers under.
const ProviderName = "twilio"

// reportPath is the webhook path Twilio posts status callbacks to; the
// message internal id is appended per send.
const reportPath = "/twilio/report/"

// Provider sends messages through Twilio accounts resolved from bridge
// configuration. It owns the per-tenant client registry.
type Provider struct {
	clients     *Registry
	callbackURL string
	logger      *zap.Logger
}

// NewProvider builds the Twilio variant. callbackBaseURL is the externally
// reachable scheme://host:port this gateway serves the report webhook on;
// apiBaseURL is overridable for tests and defaults to Twilio production.
func NewProvider(apiBaseURL string, callbackBaseURL string, logger *zap.Logger) (*Provider, error) {
	apiBaseURL = strings.TrimRight(strings.TrimSpace(apiBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	callbackBaseURL = strings.TrimRight(strings.TrimSpace(callbackBaseURL), "/")
	if callbackBaseURL == "" {
		return nil, fmt.Errorf("callback base url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := NewRegistry(func(accountSID, authToken string) *RestClient {
		return newRestClient(apiBaseURL, accountSID, authToken)
	})

	p := &Provider{
		clients:     registry,
		callbackURL: callbackBaseURL + reportPath,
		logger:      logger,
	}

	logger.Info("registered twilio status callback", zap.String("callbackUrl", p.callbackURL))
	return p, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

// Send submits the message through the bridge's Twilio account and mutates
// it in place. Rejections and transport failures are captured as FAILED with
// the provider's error text; nothing propagates to the caller.
func (p *Provider) Send(ctx context.Context, bridge domain.Bridge, message *domain.Message) {
	if message == nil {
		return
	}

	client := p.clients.Client(bridge)
	statusCallback := p.callbackURL + strconv.FormatUint(message.ID, 10)

	resource, err := client.CreateMessage(ctx, createMessageParams{
		To:             message.MobileNumber,
		From:           bridge.PhoneNumber,
		Body:           message.Body,
		StatusCallback: statusCallback,
	})
	if err != nil {
		message.MarkFailed(provider.FailureReason(err))
		p.logger.Warn("twilio send failed",
			zap.Uint64("messageId", message.ID),
			zap.String("tenantId", message.TenantID),
			zap.Bool("transient", provider.IsTransient(err)),
			zap.Error(err),
		)
		return
	}

	message.MarkSubmitted(resource.Sid, NormalizeStatus(resource.Status))
	p.logger.Debug("twilio send accepted",
		zap.Uint64("messageId", message.ID),
		zap.String("externalId", resource.Sid),
		zap.String("status", message.DeliveryStatus.String()),
	)
}
