package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/prompt"
	"jobmate/hiring-service/internal/session"
)

const maxBodyBytes = 1 << 20

// HTTPStatus maps a service error to its response status.
func HTTPStatus(err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnauthenticated), errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, prompt.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err. Internal errors are logged and not echoed to the client.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	if code == http.StatusInternalServerError {
		h.Logger.Error("request failed", "err", err)
		jsonError(w, "internal error", code)
		return
	}
	jsonError(w, err.Error(), code)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return model.Invalid("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) string { return mux.Vars(r)["id"] }

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}
