package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Placeholders rendered for fields missing from an order submission
const (
	NotSpecified     = "Не указано"
	DefaultTotal     = "0 ₽"
	DefaultItemName  = "Товар"
	DefaultItemPrice = "0 ₽"
)

// OrderSubmission represents an incoming order from the storefront.
// Every field is optional; nil means the field was absent or null.
type OrderSubmission struct {
	Name    *string     `json:"name"`
	Phone   *string     `json:"phone"`
	Email   *string     `json:"email"`
	Items   []OrderItem `json:"items"`
	Total   *string     `json:"total"`
	Comment *string     `json:"comment"`
}

// OrderItem represents a single line of an order
type OrderItem struct {
	Name  *string `json:"name"`
	Price *string `json:"price"`
}

func (s OrderSubmission) CustomerName() string  { return valueOr(s.Name, NotSpecified) }
func (s OrderSubmission) CustomerPhone() string { return valueOr(s.Phone, NotSpecified) }
func (s OrderSubmission) CustomerEmail() string { return valueOr(s.Email, NotSpecified) }
func (s OrderSubmission) TotalAmount() string   { return valueOr(s.Total, DefaultTotal) }

// CommentText returns the comment and whether it should be rendered
func (s OrderSubmission) CommentText() (string, bool) {
	if s.Comment == nil || *s.Comment == "" {
		return "", false
	}
	return *s.Comment, true
}

func (i OrderItem) DisplayName() string  { return valueOr(i.Name, DefaultItemName) }
func (i OrderItem) DisplayPrice() string { return valueOr(i.Price, DefaultItemPrice) }

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// DeliveryTarget identifies the Telegram bot and chat that receive notifications
type DeliveryTarget struct {
	BotToken string
	ChatID   string
}

// Configured reports whether both the token and the chat id are set
func (t DeliveryTarget) Configured() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

// Notification is the result of a delivered order submission
type Notification struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	ItemsCount int    `json:"itemsCount"`
}

// UnmarshalJSON rejects null entries in the items list
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("order item must be an object")
	}
	type plain OrderItem
	return json.Unmarshal(data, (*plain)(i))
}
