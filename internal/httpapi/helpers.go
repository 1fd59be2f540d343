package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tijara.org/internal/audit"
	"tijara.org/internal/auth"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform failure envelope. Messages never carry
// credentials, tokens, or internals.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"success":     false,
		"message":     msg,
		"status_code": code,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleAuthError is the single boundary converting domain errors to HTTP
// responses. Untyped errors become a generic 500 without leaking internals.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, errMessage(err))
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, errMessage(err))
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, errMessage(err))
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, errMessage(err))
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, errMessage(err))
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

var sentinelPrefixes = []string{
	auth.ErrInvalidInput.Error() + ": ",
	auth.ErrUnauthenticated.Error() + ": ",
	auth.ErrForbidden.Error() + ": ",
	auth.ErrNotFound.Error() + ": ",
	auth.ErrConflict.Error() + ": ",
	auth.ErrInvalidToken.Error() + ": ",
}

// errMessage strips the sentinel prefix so clients see the human-readable
// detail only.
func errMessage(err error) string {
	msg := err.Error()
	for _, prefix := range sentinelPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return msg[len(prefix):]
		}
	}
	return msg
}
