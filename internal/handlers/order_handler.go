package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanya-store/order-notifier/internal/metrics"
	"github.com/alanya-store/order-notifier/internal/models"
	"github.com/alanya-store/order-notifier/internal/service"
)

// maxOrderBodyBytes bounds the size of an order submission
const maxOrderBodyBytes = 1 << 20

const (
	msgMethodNotAllowed = "Method not allowed"
	msgNotConfigured    = "Telegram credentials not configured"
	msgInvalidBody      = "Invalid request body"
	msgDeliveryFailed   = "Failed to send order to Telegram"
	msgInternal         = "Internal server error"
	msgOrderSent        = "Order sent to Telegram"
)

// OrderService is the use case behind the order endpoint
type OrderService interface {
	Ready() error
	SendOrder(ctx context.Context, sub models.OrderSubmission) (*models.Notification, error)
}

// OutcomeRecorder counts terminal outcomes of order requests
type OutcomeRecorder interface {
	ObserveOutcome(outcome string)
}

// OrderResponse is the body of a successful order submission
type OrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OrderHandler handles the order notification endpoint
type OrderHandler struct {
	orderService OrderService
	outcomes     OutcomeRecorder
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler. outcomes may be nil.
func NewOrderHandler(orderService OrderService, outcomes OutcomeRecorder, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		outcomes:     outcomes,
		log:          log,
	}
}

// ServeHTTP dispatches on method: OPTIONS is a preflight, POST submits an order
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		h.HandlePreflight(w, r)
	case http.MethodPost:
		h.HandleNotify(w, r)
	default:
		allowAnyOrigin(w)
		h.observe(metrics.OutcomeMethodNotAllowed)
		WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, h.log)
	}
}

// HandlePreflight answers a CORS preflight with an empty 200
func (h *OrderHandler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	setPreflightHeaders(w)
	h.observe(metrics.OutcomePreflight)
	w.WriteHeader(http.StatusOK)
}

// HandleNotify handles POST of an order submission
func (h *OrderHandler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)

	if r.Method != http.MethodPost {
		h.observe(metrics.OutcomeMethodNotAllowed)
		WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, h.log)
		return
	}

	// Credentials are checked before the body is read
	if err := h.orderService.Ready(); err != nil {
		h.log.Error("order rejected", "error", err)
		h.observe(metrics.OutcomeNotConfigured)
		WriteError(w, http.StatusInternalServerError, msgNotConfigured, h.log)
		return
	}

	sub, err := service.DecodeOrderSubmission(http.MaxBytesReader(w, r.Body, maxOrderBodyBytes))
	if err != nil {
		h.log.Warn("failed to decode order request", "error", err)
		h.observe(metrics.OutcomeBadRequest)
		WriteError(w, http.StatusBadRequest, msgInvalidBody, h.log)
		return
	}

	notification, err := h.orderService.SendOrder(r.Context(), sub)
	if err != nil {
		h.log.Error("failed to send order", "error", err, "items_count", len(sub.Items))

		switch {
		case errors.Is(err, service.ErrNotConfigured):
			h.observe(metrics.OutcomeNotConfigured)
			WriteError(w, http.StatusInternalServerError, msgNotConfigured, h.log)
		case errors.Is(err, service.ErrDelivery):
			h.observe(metrics.OutcomeDeliveryFailed)
			WriteError(w, http.StatusBadGateway, msgDeliveryFailed, h.log)
		default:
			h.observe(metrics.OutcomeInternalError)
			WriteError(w, http.StatusInternalServerError, msgInternal, h.log)
		}
		return
	}

	h.observe(metrics.OutcomeDelivered)
	WriteJSON(w, http.StatusOK, OrderResponse{Success: true, Message: msgOrderSent}, h.log)
	h.log.Info("order sent successfully", "order_id", notification.ID, "items_count", notification.ItemsCount)
}

func (h *OrderHandler) observe(outcome string) {
	if h.outcomes != nil {
		h.outcomes.ObserveOutcome(outcome)
	}
}
