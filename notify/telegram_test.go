package notify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func newTestNotifier(t *testing.T, token, chatID string) (*TelegramNotifier, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	n := NewTelegramNotifier(token, chatID, 5*time.Second, out)
	httpmock.ActivateNonDefault(n.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return n, out
}

func TestTelegramSendSuccess(t *testing.T) {
	n, out := newTestNotifier(t, "token123", "chat456")

	var gotForm string
	httpmock.RegisterResponder(http.MethodPost, "https://api.telegram.org/bottoken123/sendMessage",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}
			gotForm = req.PostForm.Encode()
			return httpmock.NewStringResponse(200, `{"ok":true}`), nil
		})

	if err := n.Send(context.Background(), "2 new listings"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(gotForm, "chat_id=chat456") {
		t.Errorf("form = %q, missing chat id", gotForm)
	}
	if !strings.Contains(gotForm, "disable_web_page_preview=true") {
		t.Errorf("form = %q, missing preview flag", gotForm)
	}
	if out.Len() != 0 {
		t.Errorf("configured notifier should not print, got %q", out.String())
	}
}

func TestTelegramSendRejected(t *testing.T) {
	n, _ := newTestNotifier(t, "token123", "chat456")

	httpmock.RegisterResponder(http.MethodPost, "https://api.telegram.org/bottoken123/sendMessage",
		httpmock.NewStringResponder(400, `{"ok":false,"description":"Bad Request"}`))

	err := n.Send(context.Background(), "2 new listings")
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if deliveryErr.Status != 400 {
		t.Errorf("status = %d, want 400", deliveryErr.Status)
	}
}

func TestTelegramSendTransportFailure(t *testing.T) {
	n, _ := newTestNotifier(t, "token123", "chat456")

	httpmock.RegisterResponder(http.MethodPost, "https://api.telegram.org/bottoken123/sendMessage",
		httpmock.NewErrorResponder(errors.New("connection reset")))

	err := n.Send(context.Background(), "2 new listings")
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
}

func TestTelegramUnconfiguredPrintsMessage(t *testing.T) {
	n, out := newTestNotifier(t, "", "")

	if err := n.Send(context.Background(), "2 new listings"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out.String(), "2 new listings") {
		t.Errorf("stdout fallback missing message, got %q", out.String())
	}
	if info := httpmock.GetTotalCallCount(); info != 0 {
		t.Errorf("no HTTP call expected, got %d", info)
	}
}

func TestTelegramEmptyMessageDropped(t *testing.T) {
	n, out := newTestNotifier(t, "token123", "chat456")

	if err := n.Send(context.Background(), ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.Len() != 0 || httpmock.GetTotalCallCount() != 0 {
		t.Errorf("empty message should be dropped silently")
	}
}
