package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alanya-store/order-notifier/internal/metrics"
	"github.com/alanya-store/order-notifier/internal/models"
	"github.com/alanya-store/order-notifier/internal/service"
	"github.com/alanya-store/order-notifier/internal/telegram"
)

// fakeSender records outbound messages instead of calling Telegram
type fakeSender struct {
	mu    sync.Mutex
	calls []telegram.SendMessageRequest
	err   error
}

func (f *fakeSender) SendMessage(ctx context.Context, token string, msg telegram.SendMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	return f.err
}

type outcomeLog struct {
	outcomes []string
}

func (o *outcomeLog) ObserveOutcome(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var configured = models.DeliveryTarget{BotToken: "123:abc", ChatID: "-100500"}

func newTestHandler(target models.DeliveryTarget, sender *fakeSender) (*OrderHandler, *outcomeLog) {
	log := testLogger()
	outcomes := &outcomeLog{}
	svc := service.NewOrderService(target, sender, nil, log)
	return NewOrderHandler(svc, outcomes, log), outcomes
}

func decodeBody(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.NewDecoder(body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return got
}

func TestOrderHandler_Preflight(t *testing.T) {
	targets := map[string]models.DeliveryTarget{
		"configured":     configured,
		"not configured": {},
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{}
			handler, outcomes := newTestHandler(target, sender)

			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if w.Body.Len() != 0 {
				t.Errorf("body = %q, want empty", w.Body.String())
			}

			wantHeaders := map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "POST, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type",
				"Access-Control-Max-Age":       "86400",
			}
			for k, v := range wantHeaders {
				if got := w.Header().Get(k); got != v {
					t.Errorf("header %s = %q, want %q", k, got, v)
				}
			}

			if len(sender.calls) != 0 {
				t.Errorf("outbound calls = %d, want 0", len(sender.calls))
			}
			if len(outcomes.outcomes) != 1 || outcomes.outcomes[0] != metrics.OutcomePreflight {
				t.Errorf("outcomes = %v, want [preflight]", outcomes.outcomes)
			}
		})
	}
}

func TestOrderHandler_MethodNotAllowed(t *testing.T) {
	methods := []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			sender := &fakeSender{}
			handler, _ := newTestHandler(configured, sender)

			req := httptest.NewRequest(method, "/", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}
			if method != http.MethodHead {
				if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Method not allowed"}` {
					t.Errorf("body = %s, want {\"error\":\"Method not allowed\"}", got)
				}
			}
			if len(sender.calls) != 0 {
				t.Errorf("outbound calls = %d, want 0", len(sender.calls))
			}
		})
	}
}

func TestOrderHandler_NotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		target models.DeliveryTarget
		body   string
	}{
		{name: "missing token", target: models.DeliveryTarget{ChatID: "-100500"}, body: `{}`},
		{name: "missing chat id", target: models.DeliveryTarget{BotToken: "123:abc"}, body: `{}`},
		{name: "both missing", target: models.DeliveryTarget{}, body: `{}`},
		{name: "checked before parsing", target: models.DeliveryTarget{}, body: `invalid json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			handler, outcomes := newTestHandler(tt.target, sender)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			body := decodeBody(t, w.Body)
			if body["error"] != "Telegram credentials not configured" {
				t.Errorf("error = %v, want Telegram credentials not configured", body["error"])
			}
			if len(sender.calls) != 0 {
				t.Errorf("outbound calls = %d, want 0", len(sender.calls))
			}
			if len(outcomes.outcomes) != 1 || outcomes.outcomes[0] != metrics.OutcomeNotConfigured {
				t.Errorf("outcomes = %v, want [%s]", outcomes.outcomes, metrics.OutcomeNotConfigured)
			}
		})
	}
}

func TestOrderHandler_BadRequest(t *testing.T) {
	bodies := map[string]string{
		"invalid JSON":     "invalid json",
		"truncated":        `{"name":"Ivan"`,
		"array":            `[]`,
		"items not a list": `{"items":{"name":"Shirt"}}`,
		"item not object":  `{"items":["Shirt"]}`,
		"numeric total":    `{"total":500}`,
		"too large":        `{"comment":"` + strings.Repeat("a", maxOrderBodyBytes) + `"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{}
			handler, _ := newTestHandler(configured, sender)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			if got := decodeBody(t, w.Body)["error"]; got != "Invalid request body" {
				t.Errorf("error = %v, want Invalid request body", got)
			}
			if len(sender.calls) != 0 {
				t.Errorf("outbound calls = %d, want 0", len(sender.calls))
			}
		})
	}
}

func TestOrderHandler_DeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: &telegram.APIError{StatusCode: http.StatusBadRequest, Description: "chat not found"}}
	handler, outcomes := newTestHandler(configured, sender)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ivan"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	body := decodeBody(t, w.Body)
	if body["error"] != "Failed to send order to Telegram" {
		t.Errorf("error = %v", body["error"])
	}
	if _, ok := body["success"]; ok {
		t.Error("failure body must not report success")
	}
	if len(sender.calls) != 1 {
		t.Errorf("outbound calls = %d, want 1", len(sender.calls))
	}
	if len(outcomes.outcomes) != 1 || outcomes.outcomes[0] != metrics.OutcomeDeliveryFailed {
		t.Errorf("outcomes = %v, want [%s]", outcomes.outcomes, metrics.OutcomeDeliveryFailed)
	}
}

func TestOrderHandler_Delivered(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantText  []string
		wantItems int
	}{
		{
			name:      "single item order",
			body:      `{"name":"Ivan","items":[{"name":"Shirt","price":"500 ₽"}],"total":"500 ₽"}`,
			wantText:  []string{"• Shirt - 500 ₽", "💰 <b>Итого:</b> 500 ₽", "👤 <b>Клиент:</b> Ivan"},
			wantItems: 1,
		},
		{
			name:      "empty object",
			body:      `{}`,
			wantText:  []string{"👤 <b>Клиент:</b> Не указано", "📱 <b>Телефон:</b> Не указано", "📧 <b>Email:</b> Не указано", "💰 <b>Итого:</b> 0 ₽"},
			wantItems: 0,
		},
		{
			name:      "empty body",
			body:      ``,
			wantText:  []string{"💰 <b>Итого:</b> 0 ₽"},
			wantItems: 0,
		},
		{
			name:      "cart with comment",
			body:      `{"name":"Anna","phone":"+7 900","email":"a@b.c","items":[{"name":"Dress x2","price":"3000 ₽"},{"name":"Belt x1","price":"700 ₽"}],"total":"3700 ₽","comment":"Доставка утром"}`,
			wantText:  []string{"• Dress x2 - 3000 ₽\n• Belt x1 - 700 ₽\n", "💬 <b>Комментарий:</b> Доставка утром"},
			wantItems: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			handler, outcomes := newTestHandler(configured, sender)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}

			var resp OrderResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if !resp.Success || resp.Message != "Order sent to Telegram" {
				t.Errorf("response = %+v", resp)
			}

			if len(sender.calls) != 1 {
				t.Fatalf("outbound calls = %d, want exactly 1", len(sender.calls))
			}
			msg := sender.calls[0]
			if msg.ChatID != configured.ChatID || msg.ParseMode != telegram.ParseModeHTML {
				t.Errorf("outbound message = %+v", msg)
			}
			for _, want := range tt.wantText {
				if !strings.Contains(msg.Text, want) {
					t.Errorf("text missing %q:\n%s", want, msg.Text)
				}
			}
			if n := strings.Count(msg.Text, "\n• "); n != tt.wantItems {
				t.Errorf("item lines = %d, want %d", n, tt.wantItems)
			}
			if len(outcomes.outcomes) != 1 || outcomes.outcomes[0] != metrics.OutcomeDelivered {
				t.Errorf("outcomes = %v, want [%s]", outcomes.outcomes, metrics.OutcomeDelivered)
			}
		})
	}
}

func TestOrderHandler_ExactlyOneCallPerRequest(t *testing.T) {
	sender := &fakeSender{}
	handler, _ := newTestHandler(configured, sender)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ivan"}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
		if len(sender.calls) != i+1 {
			t.Fatalf("after request %d outbound calls = %d, want %d", i, len(sender.calls), i+1)
		}
	}
}

// stubService lets the handler be tested against unexpected service errors
type stubService struct {
	err error
}

func (s stubService) Ready() error { return nil }

func (s stubService) SendOrder(ctx context.Context, sub models.OrderSubmission) (*models.Notification, error) {
	return nil, s.err
}

func TestOrderHandler_UnexpectedError(t *testing.T) {
	outcomes := &outcomeLog{}
	handler := NewOrderHandler(stubService{err: errors.New("boom")}, outcomes, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if got := decodeBody(t, w.Body)["error"]; got != "Internal server error" {
		t.Errorf("error = %v, want Internal server error", got)
	}
	if len(outcomes.outcomes) != 1 || outcomes.outcomes[0] != metrics.OutcomeInternalError {
		t.Errorf("outcomes = %v, want [%s]", outcomes.outcomes, metrics.OutcomeInternalError)
	}
}
