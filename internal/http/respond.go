package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/match"
)

var errUnauthorized = errors.New("participant identity required")

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind match.Kind) int {
	switch kind {
	case match.KindNotFound:
		return http.StatusNotFound
	case match.KindForbidden:
		return http.StatusForbidden
	case match.KindInvalidState, match.KindNotStarted, match.KindConflict, match.KindAlreadyExists:
		return http.StatusConflict
	case match.KindValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError writes err as JSON. Internal errors are logged and hidden.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnauthorized) {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	kind := match.KindOf(err)
	if kind == match.KindInternal {
		log.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: kind})
		return
	}
	writeJSON(w, statusFor(kind), errorResponse{Error: err.Error(), Kind: kind})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", match.ErrValidation, err)
	}
	return nil
}
