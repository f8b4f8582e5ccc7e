package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/service"
)

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	body := map[string]interface{}{
		"success": false,
		"error":   http.StatusText(status),
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

func writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func writeCreated(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleServiceError maps service sentinels to HTTP statuses. Anything
// unrecognised is logged and reported as 500; outside production the
// error text is passed through.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, verr.Details...)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, clientMessage(err, service.ErrValidation))
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, clientMessage(err, service.ErrUnauthorized))
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, clientMessage(err, service.ErrForbidden))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, clientMessage(err, service.ErrNotFound))
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusBadRequest, clientMessage(err, service.ErrConflict))
	default:
		h.logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")

		message := err.Error()
		if h.production {
			message = "An unexpected error occurred"
		}
		writeError(w, http.StatusInternalServerError, message)
	}
}

// clientMessage drops the "<sentinel>: " prefix added when services wrap a
// sentinel with detail.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}
