// Package notify posts order summaries to a chat bot webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker/v2"

	"storecart/internal/domain"
)

var ErrNotifyFailed = errors.New("order notification failed")

type message struct {
	ChatID    string `json:"chat_id,omitempty"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Webhook sends one Markdown message per order. Repeated failures open the
// breaker and later calls fail fast until it half-opens again.
type Webhook struct {
	URL     string
	ChatID  string
	Timeout time.Duration

	cb *gobreaker.CircuitBreaker[[]byte]
}

func NewWebhook(url, chatID string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		URL:     url,
		ChatID:  chatID,
		Timeout: timeout,
		cb: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "order-webhook",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (w *Webhook) Notify(ctx context.Context, o domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyFailed, err)
	}
	msg := message{ChatID: w.ChatID, Text: Summary(o), ParseMode: "Markdown"}
	_, err := w.cb.Execute(func() ([]byte, error) {
		return w.post(msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyFailed, err)
	}
	return nil
}

func (w *Webhook) post(msg message) ([]byte, error) {
	agent := fiber.Post(w.URL).JSON(msg).Timeout(w.Timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("webhook returned %d", code)
	}
	return body, nil
}

// mdEscape escapes the characters legacy Markdown treats as markup.
var mdEscape = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// Summary renders the order as a Markdown message with free text escaped.
func Summary(o domain.Order) string {
	esc := mdEscape.Replace
	var b strings.Builder
	fmt.Fprintf(&b, "*New order* `%s`\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s", esc(o.ContactName))
	if o.ContactEmail != "" {
		fmt.Fprintf(&b, " <%s>", esc(o.ContactEmail))
	}
	b.WriteString("\n")
	if o.ContactPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", esc(o.ContactPhone))
	}
	fmt.Fprintf(&b, "Ship to: %s\n", esc(o.ShipTo))
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "- %s x%d = %s\n", esc(l.Title), l.Quantity, l.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "*Total: %s*", o.Total.StringFixed(2))
	return b.String()
}
