// Package notify delivers engine alerts to an operator-configured webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	xhttp "CoinSentry/pkg/http"
)

// WebhookNotifier posts alert payloads as JSON to a single webhook URL.
type WebhookNotifier struct {
	url    string
	client *xhttp.Client
}

// NewWebhookNotifier builds a notifier; an empty URL yields a disabled
// notifier whose Send is a no-op.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *WebhookNotifier) Enabled() bool { return n.url != "" }

// Send posts one alert. Transient failures retry with a short backoff.
func (n *WebhookNotifier) Send(ctx context.Context, event string, payload interface{}) error {
	if !n.Enabled() {
		return nil
	}
	body := map[string]interface{}{
		"event":   event,
		"ts":      time.Now().UTC().Format(time.RFC3339),
		"payload": payload,
	}

	const attempts = 3
	var err error
	for i := 1; i <= attempts; i++ {
		err = n.post(ctx, body)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("webhook %s: %w", event, err)
}

func (n *WebhookNotifier) post(ctx context.Context, body interface{}) error {
	return n.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    n.url,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
	}, nil)
}
