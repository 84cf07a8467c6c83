package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier delivers a notification message out of band.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// DeliveryError reports a rejected delivery. It is the one failure the
// watcher must not swallow: a missed alert is worse than a crashed run.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Errorf("notification delivery: %w", e.Err).Error()
	}
	return fmt.Sprintf("notification delivery: telegram responded %d: %s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramNotifier sends messages through the Telegram Bot API. When the
// token or chat id is unset the message is printed to stdout instead, so an
// unconfigured run still surfaces its result without failing.
type TelegramNotifier struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	stdout  io.Writer
}

// NewTelegramNotifier builds a notifier for the given bot credentials.
func NewTelegramNotifier(token, chatID string, timeout time.Duration, stdout io.Writer) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		apiBase: defaultTelegramAPI,
		client:  &http.Client{Timeout: timeout},
		stdout:  stdout,
	}
}

// Send delivers message, or prints it when the notifier is unconfigured.
// Empty messages are dropped silently.
func (n *TelegramNotifier) Send(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}
	if n.token == "" || n.chatID == "" {
		fmt.Fprintf(n.stdout, "TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Message follows:\n\n%s\n", message)
		return nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	form := url.Values{
		"chat_id":                  {n.chatID},
		"text":                     {message},
		"disable_web_page_preview": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DeliveryError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
