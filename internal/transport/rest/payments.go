package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ferremas/backend/internal/client/payment"
	"github.com/ferremas/backend/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// PaymentHandler exposes the payment initiation and confirmation endpoints
// backed by the external gateway. No transaction state is kept locally.
type PaymentHandler struct {
	gateway  *payment.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment API handler.
func NewPaymentHandler(client *payment.Client, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		gateway:  client,
		validate: validator.New(),
		logger:   logger.With("component", "payments"),
	}
}

// PaymentCreateDto represents the payload for initiating a card payment.
type PaymentCreateDto struct {
	BuyOrder  string `json:"buy_order"  validate:"required,max=26"`
	SessionID string `json:"session_id" validate:"required,max=61"`
	Amount    int64  `json:"amount"     validate:"required,gt=0"`
}

// RegisterRoutes registers the HTTP routes for payments.
func (h *PaymentHandler) RegisterRoutes(r *chi.Mux) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/{token}", h.Commit)
	})
}

// Create initiates a transaction and returns the gateway token and redirect URL.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, h.logger)
	var dto PaymentCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		mLogger.WarnContext(r.Context(), "Invalid payment request", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid payment request")
		return
	}
	mLogger.DebugContext(r.Context(), "Initiating payment", "buy_order", dto.BuyOrder, "amount", dto.Amount)

	tx, err := h.gateway.Create(r.Context(), dto.BuyOrder, dto.SessionID, dto.Amount)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error initiating payment", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to initiate payment")
		return
	}
	mLogger.InfoContext(r.Context(), "Payment initiated", "buy_order", dto.BuyOrder)
	web.RespondJSON(w, mLogger, http.StatusOK, tx)
}

// Commit confirms a transaction by its token and returns the gateway status.
func (h *PaymentHandler) Commit(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, h.logger)
	token := chi.URLParam(r, "token")
	if token == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing transaction token")
		return
	}
	mLogger.DebugContext(r.Context(), "Confirming payment", "token", token)

	result, err := h.gateway.Commit(r.Context(), token)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error confirming payment", "token", token, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to confirm payment")
		return
	}
	mLogger.InfoContext(r.Context(), "Payment confirmed", "token", token, "status", result.Status)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}
