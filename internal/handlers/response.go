package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/middlewares"
	"github.com/sbilibin2017/questlog/internal/models"
	"github.com/sbilibin2017/questlog/internal/services"
)

var validate = validator.New()

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: not found
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDuplicateUsername):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrValidation):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Log.Errorw("internal server error", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody reads a JSON body into dst and runs its validate tags.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", models.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", models.ErrValidation, name)
	}
	return id, nil
}

// authorizeOwner rejects callers other than ownerID.
func authorizeOwner(r *http.Request, ownerID int64) error {
	callerID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok || callerID != ownerID {
		return models.ErrForbidden
	}
	return nil
}
