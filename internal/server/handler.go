package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/internal/transport"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// Handler exposes the mock store over HTTP so a test runner and a subject
// under test in different processes can share it without touching the
// backing file directly.
type Handler struct {
	store     storage.Store
	transport *transport.MockTransport
	logger    logger.Logger
	events    *EventHub
}

// NewHandler creates the admin API handler.
func NewHandler(store storage.Store, log logger.Logger, events *EventHub) *Handler {
	return &Handler{
		store:     store,
		transport: transport.New(store, log),
		logger:    log,
		events:    events,
	}
}

// RegisterRoutes mounts the admin API under the given path prefix.
func (h *Handler) RegisterRoutes(router *mux.Router, prefix string) {
	api := router.PathPrefix(prefix).Subrouter()
	api.HandleFunc("/records", h.handleList).Methods(http.MethodGet)
	api.HandleFunc("/records", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/records", h.handleReset).Methods(http.MethodDelete)
	api.HandleFunc("/resolve", h.handleResolve).Methods(http.MethodPost)
	api.HandleFunc("/events", h.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records := h.store.All()
	if records == nil {
		records = []*record.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var rec record.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid record body")
		return
	}
	if len(rec.Criteria) == 0 {
		h.writeError(w, http.StatusBadRequest, "record requires a criteria object")
		return
	}

	if err := h.store.Add(&rec); err != nil {
		h.logger.Error("Failed to register record", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to persist record")
		return
	}

	h.logger.Info("Mock response registered", "criteria", rec.Criteria)
	h.events.Broadcast(StoreEvent{Operation: "register", Criteria: rec.Criteria})
	h.writeJSON(w, http.StatusCreated, &rec)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(); err != nil {
		h.logger.Error("Failed to reset store", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to reset store")
		return
	}

	h.logger.Info("Mock store reset", "path", h.store.Path())
	h.events.Broadcast(StoreEvent{Operation: "reset"})
	w.WriteHeader(http.StatusNoContent)
}

// handleResolve answers exactly like the mock transport would: the matched
// payload is the body, its "code" field becomes the HTTP status, and a miss
// produces the 404-equivalent fallback rather than an API error.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req transport.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Method == "" || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "request requires method and url")
		return
	}

	resp := h.transport.Request(&req)
	code := resp.Code()
	if code == 0 {
		code = http.StatusOK
	}
	h.writeJSON(w, code, resp)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := h.events.Upgrade(w, r); err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.store.Path(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
