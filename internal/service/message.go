package service

import (
	"html"
	"strings"

	"github.com/alanya-store/order-notifier/internal/models"
)

const (
	messageTitle  = "🛍 <b>Новый заказ Alanya Store</b>"
	labelCustomer = "👤 <b>Клиент:</b> "
	labelPhone    = "📱 <b>Телефон:</b> "
	labelEmail    = "📧 <b>Email:</b> "
	labelItems    = "📦 <b>Товары:</b>"
	labelTotal    = "💰 <b>Итого:</b> "
	labelComment  = "💬 <b>Комментарий:</b> "
	itemBullet    = "• "
)

// RenderMessage formats an order submission as a Telegram HTML message.
// User supplied values are escaped so they cannot break the markup.
func RenderMessage(s models.OrderSubmission) string {
	var b strings.Builder

	b.WriteString(messageTitle)
	b.WriteString("\n\n")
	b.WriteString(labelCustomer + html.EscapeString(s.CustomerName()) + "\n")
	b.WriteString(labelPhone + html.EscapeString(s.CustomerPhone()) + "\n")
	b.WriteString(labelEmail + html.EscapeString(s.CustomerEmail()) + "\n")
	b.WriteString("\n")
	b.WriteString(labelItems + "\n")

	for _, item := range s.Items {
		b.WriteString(itemBullet)
		b.WriteString(html.EscapeString(item.DisplayName()))
		b.WriteString(" - ")
		b.WriteString(html.EscapeString(item.DisplayPrice()))
		b.WriteString("\n")
	}

	b.WriteString("\n" + labelTotal + html.EscapeString(s.TotalAmount()))

	if comment, ok := s.CommentText(); ok {
		b.WriteString("\n\n" + labelComment + html.EscapeString(comment))
	}

	return b.String()
}
