// Package notify delivers customer notifications through an external
// gateway. Delivery is best effort: failures are logged and never block the
// queue engine.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayClient exposes the small subset of the notification gateway REST
// API the application uses.
type GatewayClient struct {
	baseURL string
	client  *http.Client
}

// NewGatewayClient constructs a client targeting the provided base URL.
func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// TicketCalled is the payload for a "your turn" notification.
type TicketCalled struct {
	EntryID          string `json:"entryId"`
	VerificationCode string `json:"verificationCode"`
	TechnicianName   string `json:"technicianName"`
}

// SendTicketCalled asks the gateway to notify the customer their entry was
// called.
func (c *GatewayClient) SendTicketCalled(ctx context.Context, n TicketCalled) error {
	body, _ := json.Marshal(map[string]any{
		"template": "queue_called",
		"data":     n,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/notifications", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification gateway: %s", resp.Status)
	}
	return nil
}
