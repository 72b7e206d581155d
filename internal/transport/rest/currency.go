package rest

import (
	"log/slog"
	"net/http"

	"github.com/ferremas/backend/internal/client/rates"
	"github.com/ferremas/backend/pkg/web"
	"github.com/go-chi/chi/v5"
)

// CurrencyHandler exposes the USD to CLP conversion endpoint backed by the
// external rate source.
type CurrencyHandler struct {
	rates  *rates.Client
	logger *slog.Logger
}

// NewCurrencyHandler creates a new currency API handler.
func NewCurrencyHandler(client *rates.Client, logger *slog.Logger) *CurrencyHandler {
	return &CurrencyHandler{
		rates:  client,
		logger: logger.With("component", "currency"),
	}
}

// RegisterRoutes registers the HTTP routes for currency conversion.
func (h *CurrencyHandler) RegisterRoutes(r *chi.Mux) {
	r.Get("/currency/conversion/usd-clp", h.Convert)
}

// Convert converts the given USD amount to CLP at the latest observed rate.
// The upstream call carries no retry; a failure is reported as a 502.
func (h *CurrencyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, h.logger)
	amount, ok := web.ParseQueryFloat(r, w, mLogger, "amount")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received conversion request", "amount", amount)

	conversion, err := h.rates.Convert(r.Context(), amount)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching exchange rate", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to fetch exchange rate")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, conversion)
}
