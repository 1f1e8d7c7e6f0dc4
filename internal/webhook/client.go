// Package webhook implements outbound reminder delivery (§4.4, §5):
// a fire-and-forget POST of the due-reminder batch to an account's
// configured webhook URL, with no retries.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/reminder"
)

const verificationHeader = "nettu-scheduler-webhook-key"

// Client posts reminder batches over HTTP, implementing reminder.WebhookSender.
type Client struct {
	HTTP    *http.Client
	Timeout time.Duration
}

// NewClient constructs a Client with the given per-call timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{}, Timeout: timeout}
}

// Send POSTs descriptors as a JSON array to account.Webhook.URL, signing
// the request with the account's verification key (§4.4 step 2).
func (c *Client) Send(ctx context.Context, account *domain.Account, descriptors []reminder.Descriptor) error {
	if account.Webhook == nil {
		return fmt.Errorf("webhook: account %s has no webhook configured", account.ID)
	}

	body, err := json.Marshal(descriptors)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, account.Webhook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(verificationHeader, account.Webhook.VerificationKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
