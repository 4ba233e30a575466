package notify

import (
	"context"
	"net/url"

	"github.com/matzehuels/modsync/pkg/integrations"
)

// WebhookMaxLen is the longest message a chat webhook accepts.
const WebhookMaxLen = 2000

// Webhook posts {"content": text} to a chat webhook URL.
type Webhook struct {
	url    string
	client *integrations.Client
}

// NewWebhook creates a webhook destination. A nil client uses defaults.
func NewWebhook(rawURL string, client *integrations.Client) *Webhook {
	if client == nil {
		client = integrations.NewClient(nil, "", 0, map[string]string{"User-Agent": integrations.DefaultUserAgent()})
	}
	return &Webhook{url: rawURL, client: client}
}

// Name returns the webhook host; the path usually carries a token.
func (w *Webhook) Name() string {
	if u, err := url.Parse(w.url); err == nil && u.Host != "" {
		return "webhook:" + u.Host
	}
	return "webhook"
}

func (w *Webhook) Connect(context.Context) error { return nil }

func (w *Webhook) Send(ctx context.Context, text string) error {
	return w.client.PostJSON(ctx, w.url, map[string]string{"content": text})
}

func (w *Webhook) Close() error { return nil }

func (w *Webhook) MaxLen() int { return WebhookMaxLen }
