package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ParseModeHTML enables Telegram's HTML subset in message text
const ParseModeHTML = "HTML"

// SendMessageRequest is the JSON body of the Bot API sendMessage method
type SendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// APIError is returned when the Bot API answers but rejects the call
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram api: status %d: %s", e.StatusCode, e.Description)
}

// Client talks to the Telegram Bot API.
// It never retries; each SendMessage is exactly one HTTP call.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

// NewClient creates a Bot API client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		log.Debug("telegram request", "method", req.Method, "api_method", "sendMessage")
		return nil
	})

	return &Client{
		http: client,
		log:  log,
	}
}

// SendMessage posts msg to the chat using the bot identified by token
func (c *Client) SendMessage(ctx context.Context, token string, msg SendMessageRequest) error {
	var result apiResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("token", token).
		SetBody(msg).
		SetResult(&result).
		SetError(&result).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", redactURL(err))
	}

	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Description: result.Description}
	}
	if !result.OK {
		return &APIError{StatusCode: resp.StatusCode(), Description: result.Description}
	}

	c.log.Debug("telegram message sent", "status", resp.StatusCode(), "duration_ms", resp.Time().Milliseconds())
	return nil
}

// redactURL strips the request URL, which embeds the bot token, from transport errors
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
