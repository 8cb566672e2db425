package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"recell-store/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do.
		return
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error to an HTTP response. Domain errors
// carry their own code and user-facing message; anything else is an
// internal failure and stays opaque to the client.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusFor(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Something went wrong. Please try again.")
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeValidation, model.ErrCodeWeakPassword,
		model.ErrCodeCartEmpty, model.ErrCodeProfileIncomplete, model.ErrCodeResetTokenInvalid:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound,
		model.ErrCodeTicketNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailInUse, model.ErrCodeAlreadyInCart,
		model.ErrCodeOutOfStock, model.ErrCodeInvalidStatus:
		return http.StatusConflict
	case model.ErrCodeTooManyAttempts:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body.")
	}
	return nil
}

// pathID parses the named chi URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeValidation, "Invalid ID format.")
	}
	return id, nil
}
