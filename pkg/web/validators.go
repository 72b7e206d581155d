package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseQueryInt reads an optional non-negative integer query parameter,
// falling back to def when the parameter is absent. A malformed or negative
// value produces a 400 response and a false flag.
func ParseQueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int32) (int32, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || intValue < 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int32(intValue), true
}

// ParseQueryFloat reads a required positive floating-point query parameter.
// A missing, malformed or non-positive value produces a 400 response and a
// false flag.
func ParseQueryFloat(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (float64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return 0, false
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || floatValue <= 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return floatValue, true
}
