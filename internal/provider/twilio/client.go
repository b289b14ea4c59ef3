package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/messagegate/smsgate/internal/provider"
)

// DefaultAPIBaseURL is Twilio's production REST API root.
const DefaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

const defaultRequestTimeout = 30 * time.Second

// RestClient is an authenticated handle to one Twilio account's REST API.
type RestClient struct {
	accountSID string
	http       *resty.Client
}

func newRestClient(baseURL, accountSID, authToken string) *RestClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetBasicAuth(accountSID, authToken)
	client.SetTimeout(defaultRequestTimeout)
	client.SetRetryCount(0)

	return &RestClient{
		accountSID: accountSID,
		http:       client,
	}
}

// AccountSID returns the provider account this client is bound to.
func (c *RestClient) AccountSID() string {
	return c.accountSID
}

type createMessageParams struct {
	To             string
	From           string
	Body           string
	StatusCallback string
}

// messageResource is the subset of Twilio's message resource the engine reads.
type messageResource struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateMessage submits one outbound message. Twilio-level rejections come
// back as a *provider.ProviderError carrying the API error message verbatim;
// transport failures are wrapped the same way.
func (c *RestClient) CreateMessage(ctx context.Context, params createMessageParams) (*messageResource, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("twilio client is not initialized")
	}

	var resource messageResource
	var apiErr apiError

	response, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":             params.To,
			"From":           params.From,
			"Body":           params.Body,
			"StatusCallback": params.StatusCallback,
		}).
		SetResult(&resource).
		SetError(&apiErr).
		Post(fmt.Sprintf("/Accounts/%s/Messages.json", c.accountSID))
	if err != nil {
		return nil, &provider.ProviderError{
			Message:   fmt.Sprintf("twilio request failed: %v", err),
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	if response.IsError() {
		return nil, &provider.ProviderError{
			StatusCode: response.StatusCode(),
			Message:    rejectionMessage(response.StatusCode(), apiErr, response.String()),
			Transient:  isTransientHTTPStatus(response.StatusCode()),
		}
	}

	return &resource, nil
}

func rejectionMessage(statusCode int, apiErr apiError, body string) string {
	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}
	if body = strings.TrimSpace(body); body != "" {
		return fmt.Sprintf("twilio returned status %d: %s", statusCode, body)
	}
	return fmt.Sprintf("twilio returned status %d", statusCode)
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}
