// Package handlers implements the HTTP API. Realtime fan-out goes through
// the relay; handlers only validate, persist, and answer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pulsechat/auth"
	"pulsechat/cleanup"
	"pulsechat/common"
	"pulsechat/config"
	"pulsechat/database"
	"pulsechat/logging"
	"pulsechat/media"
	"pulsechat/readmodel"
	"pulsechat/relay"
)

// Handler carries the wired dependencies for every route.
type Handler struct {
	db      *database.DB
	relay   *relay.Relay
	read    *readmodel.Service
	media   media.Host
	tokens  *auth.Manager
	cleanup *cleanup.Service
	log     logging.Logger
	cfg     *config.Config
}

func New(db *database.DB, r *relay.Relay, read *readmodel.Service, host media.Host,
	tokens *auth.Manager, cln *cleanup.Service, log logging.Logger, cfg *config.Config) *Handler {
	return &Handler{
		db:      db,
		relay:   r,
		read:    read,
		media:   host,
		tokens:  tokens,
		cleanup: cln,
		log:     log,
		cfg:     cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps the error taxonomy onto HTTP statuses. Unrecognized
// errors are logged and hidden behind a generic 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Server error"

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, common.ErrInvalidIdentifier), errors.Is(err, common.ErrValidationFailed):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrExpired):
		status, message = http.StatusGone, "Expired"
	case errors.Is(err, common.ErrUpstreamUnavailable):
		status, message = http.StatusServiceUnavailable, "Media storage unavailable"
	default:
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

// pathID extracts a positive int64 path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrInvalidIdentifier
	}
	return id, nil
}
