// package notify posts workflow milestones to a chat webhook.
//
// The payload shape is Discord-compatible (content plus a single embed) but
// any endpoint accepting the JSON body works. Notification failures are
// reported to the caller and never abort the workflow; the engine logs and
// moves on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhpark-dev/lottoctl/internal/shared"
)

// Embed colors for the different milestone kinds.
const (
	colorInfo    = 0x3498db
	colorSuccess = 0x2ecc71
	colorWarning = 0xe67e22
	colorFailure = 0xe74c3c
)

// Notifier receives workflow milestones.
type Notifier interface {
	RunStart(ctx context.Context) error
	LoginStart(ctx context.Context, userID string) error
	LoginSuccess(ctx context.Context, userID string) error
	LoginFailure(ctx context.Context, userID, reason string) error
	BalanceChecked(ctx context.Context, balance int) error
	RechargeStart(ctx context.Context, amount int) error
	RechargeSuccess(ctx context.Context, amount, newBalance int) error
	RechargeFailure(ctx context.Context, amount int, reason string) error
	PurchaseStart(ctx context.Context, games int) error
	PurchaseSuccess(ctx context.Context, succeeded, attempted, spent int) error
	PurchaseFailure(ctx context.Context, games int, reason string) error
	RunComplete(ctx context.Context) error
	Critical(ctx context.Context, title, detail string) error
}

// Payload is the webhook request body.
type Payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a single rich block inside a Payload.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Field is a labeled value inside an Embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// WebhookNotifier posts milestones to a single webhook URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookNotifier{url: url, httpClient: client, now: time.Now}
}

func (n *WebhookNotifier) send(ctx context.Context, content string, embed Embed) error {
	embed.Timestamp = n.now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(Payload{Content: content, Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (n *WebhookNotifier) RunStart(ctx context.Context) error {
	return n.send(ctx, "", Embed{
		Title:       "Lotto run started",
		Description: "Starting login, balance check, and purchase.",
		Color:       colorInfo,
	})
}

func (n *WebhookNotifier) LoginStart(ctx context.Context, userID string) error {
	return n.send(ctx, "", Embed{
		Title: "Logging in",
		Color: colorInfo,
		Fields: []Field{
			{Name: "User", Value: shared.Mask(userID), Inline: true},
		},
	})
}

func (n *WebhookNotifier) LoginSuccess(ctx context.Context, userID string) error {
	return n.send(ctx, "", Embed{
		Title: "Login succeeded",
		Color: colorSuccess,
		Fields: []Field{
			{Name: "User", Value: shared.Mask(userID), Inline: true},
		},
	})
}

func (n *WebhookNotifier) LoginFailure(ctx context.Context, userID, reason string) error {
	return n.send(ctx, "", Embed{
		Title: "Login failed",
		Color: colorFailure,
		Fields: []Field{
			{Name: "User", Value: shared.Mask(userID), Inline: true},
			{Name: "Reason", Value: reason},
		},
	})
}

func (n *WebhookNotifier) BalanceChecked(ctx context.Context, balance int) error {
	return n.send(ctx, "", Embed{
		Title: "Deposit balance",
		Color: colorInfo,
		Fields: []Field{
			{Name: "Balance", Value: formatWon(balance), Inline: true},
		},
	})
}

func (n *WebhookNotifier) RechargeStart(ctx context.Context, amount int) error {
	return n.send(ctx, "", Embed{
		Title: "Recharging deposit",
		Color: colorWarning,
		Fields: []Field{
			{Name: "Amount", Value: formatWon(amount), Inline: true},
		},
	})
}

func (n *WebhookNotifier) RechargeSuccess(ctx context.Context, amount, newBalance int) error {
	return n.send(ctx, "", Embed{
		Title: "Recharge complete",
		Color: colorSuccess,
		Fields: []Field{
			{Name: "Amount", Value: formatWon(amount), Inline: true},
			{Name: "New balance", Value: formatWon(newBalance), Inline: true},
		},
	})
}

func (n *WebhookNotifier) RechargeFailure(ctx context.Context, amount int, reason string) error {
	return n.send(ctx, "", Embed{
		Title: "Recharge failed",
		Color: colorFailure,
		Fields: []Field{
			{Name: "Amount", Value: formatWon(amount), Inline: true},
			{Name: "Reason", Value: reason},
		},
	})
}

func (n *WebhookNotifier) PurchaseStart(ctx context.Context, games int) error {
	return n.send(ctx, "", Embed{
		Title: "Buying tickets",
		Color: colorInfo,
		Fields: []Field{
			{Name: "Games", Value: fmt.Sprintf("%d", games), Inline: true},
		},
	})
}

func (n *WebhookNotifier) PurchaseSuccess(ctx context.Context, succeeded, attempted, spent int) error {
	return n.send(ctx, "", Embed{
		Title: "Purchase complete",
		Color: colorSuccess,
		Fields: []Field{
			{Name: "Games", Value: fmt.Sprintf("%d/%d", succeeded, attempted), Inline: true},
			{Name: "Spent", Value: formatWon(spent), Inline: true},
		},
	})
}

func (n *WebhookNotifier) PurchaseFailure(ctx context.Context, games int, reason string) error {
	return n.send(ctx, "", Embed{
		Title: "Purchase failed",
		Color: colorFailure,
		Fields: []Field{
			{Name: "Games", Value: fmt.Sprintf("%d", games), Inline: true},
			{Name: "Reason", Value: reason},
		},
	})
}

func (n *WebhookNotifier) RunComplete(ctx context.Context) error {
	return n.send(ctx, "", Embed{
		Title: "Lotto run finished",
		Color: colorSuccess,
	})
}

func (n *WebhookNotifier) Critical(ctx context.Context, title, detail string) error {
	return n.send(ctx, "@here", Embed{
		Title:       title,
		Description: detail,
		Color:       colorFailure,
	})
}

// formatWon renders an amount with thousands separators and the won suffix.
func formatWon(amount int) string {
	s := fmt.Sprintf("%d", amount)
	if amount < 0 {
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if amount < 0 {
		return "-" + string(out) + " won"
	}
	return string(out) + " won"
}
