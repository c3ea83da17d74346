package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanya-store/order-notifier/internal/models"
	"github.com/alanya-store/order-notifier/internal/telegram"
	"github.com/google/uuid"
)

// Errors returned by OrderService and DecodeOrderSubmission
var (
	ErrNotConfigured  = errors.New("telegram credentials not configured")
	ErrInvalidPayload = errors.New("invalid order payload")
	ErrDelivery       = errors.New("order delivery failed")
)

// DeliveryError wraps a failed outbound sendMessage call
type DeliveryError struct {
	OrderID string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver order %s: %v", e.OrderID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

// MessageSender sends a rendered message through the Bot API
type MessageSender interface {
	SendMessage(ctx context.Context, token string, msg telegram.SendMessageRequest) error
}

// DeliveryObserver records outbound call latency
type DeliveryObserver interface {
	ObserveDelivery(err error, d time.Duration)
}

// OrderService renders order submissions and forwards them to Telegram
type OrderService struct {
	target   models.DeliveryTarget
	sender   MessageSender
	observer DeliveryObserver
	log      *slog.Logger
}

// NewOrderService creates a new order service. observer may be nil.
func NewOrderService(target models.DeliveryTarget, sender MessageSender, observer DeliveryObserver, log *slog.Logger) *OrderService {
	return &OrderService{
		target:   target,
		sender:   sender,
		observer: observer,
		log:      log,
	}
}

// Ready returns ErrNotConfigured when the delivery target is incomplete
func (s *OrderService) Ready() error {
	if !s.target.Configured() {
		return ErrNotConfigured
	}
	return nil
}

// SendOrder renders the submission and delivers it with exactly one outbound call
func (s *OrderService) SendOrder(ctx context.Context, sub models.OrderSubmission) (*models.Notification, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		ID:         generateOrderID(),
		Text:       RenderMessage(sub),
		ItemsCount: len(sub.Items),
	}

	msg := telegram.SendMessageRequest{
		ChatID:    s.target.ChatID,
		Text:      notification.Text,
		ParseMode: telegram.ParseModeHTML,
	}

	start := time.Now()
	err := s.sender.SendMessage(ctx, s.target.BotToken, msg)
	if s.observer != nil {
		s.observer.ObserveDelivery(err, time.Since(start))
	}
	if err != nil {
		return nil, &DeliveryError{OrderID: notification.ID, Err: err}
	}

	s.log.Info("order notification delivered",
		"order_id", notification.ID,
		"items_count", notification.ItemsCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return notification, nil
}

// generateOrderID generates a reference for log correlation
func generateOrderID() string {
	return uuid.New().String()
}
