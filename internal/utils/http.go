package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/domain"
)

// Envelope is the JSON body of every successful API response.
type Envelope struct {
	Data     interface{}            `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ErrorBody is the JSON body of a failed API response.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes data with the standard envelope.
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	writeBody(w, log, status, Envelope{
		Data: data,
		Metadata: map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// WriteError maps err to a status code and writes it as JSON.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusForError(err)
	body := ErrorBody{Error: err.Error()}

	var rejected *domain.RejectedError
	if errors.As(err, &rejected) {
		body.Details = map[string]interface{}{
			"retcode":     rejected.Retcode,
			"description": rejected.Description,
			"request":     rejected.Request,
			"result":      rejected.Result,
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeBody(w, log, status, body)
}

// WriteBadRequest writes a 400 with msg.
func WriteBadRequest(w http.ResponseWriter, log zerolog.Logger, msg string) {
	writeBody(w, log, http.StatusBadRequest, ErrorBody{Error: msg})
}

// WriteNotFound writes a 404 with msg.
func WriteNotFound(w http.ResponseWriter, log zerolog.Logger, msg string) {
	writeBody(w, log, http.StatusNotFound, ErrorBody{Error: msg})
}

// WriteInternalError logs err and writes a 500 with msg. Used for local
// storage failures, which are not the terminal's fault.
func WriteInternalError(w http.ResponseWriter, log zerolog.Logger, msg string, err error) {
	log.Error().Err(err).Msg(msg)
	writeBody(w, log, http.StatusInternalServerError, ErrorBody{Error: msg})
}

// StatusForError maps terminal and domain errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownTimeframe),
		errors.Is(err, domain.ErrUnknownOrderType),
		errors.Is(err, domain.ErrNotPendingOrderType),
		errors.Is(err, domain.ErrUnknownSymbol):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderRejected),
		errors.Is(err, domain.ErrSymbolActivation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeBody(w http.ResponseWriter, log zerolog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
