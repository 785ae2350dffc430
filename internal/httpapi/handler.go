package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Drilmo/streamq/internal/engine"
	"github.com/Drilmo/streamq/internal/models"
)

// Handler exposes the engine's public operations to the operator UI and
// automation layers. Overlays never use this surface.
type Handler struct {
	engine *engine.Engine
}

type addEntryRequest struct {
	User *models.User `json:"user"`
	Note string       `json:"note"`
}

type drawRequest struct {
	DrawType        string `json:"draw_type"`
	UserID          string `json:"user_id"`
	AddToInProgress bool   `json:"add_to_in_progress"`
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/queues", h.handleQueues)
	mux.HandleFunc("/api/queues/", h.handleQueue)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleQueues(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.Queues())
	case http.MethodPost:
		q := h.engine.CreateQueue(r.Context())
		if q == nil {
			writeError(w, http.StatusConflict, "rejected", "queue limit reached")
			return
		}
		writeJSON(w, http.StatusCreated, q)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/queues/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "queue id is required")
		return
	}
	queueID := parts[0]

	switch {
	case len(parts) == 1:
		h.handleQueueRoot(w, r, queueID)
	case len(parts) == 2 && parts[1] == "entries":
		h.handleAddEntry(w, r, queueID, false)
	case len(parts) == 2 && parts[1] == "in-progress":
		h.handleAddEntry(w, r, queueID, true)
	case len(parts) == 2 && parts[1] == "position":
		h.handlePosition(w, r, queueID)
	case len(parts) == 2 && parts[1] == "location":
		h.handleLocation(w, r, queueID)
	case len(parts) == 3 && parts[1] == "entries":
		h.handleRemoveEntry(w, r, queueID, parts[2], false)
	case len(parts) == 3 && parts[1] == "in-progress":
		h.handleRemoveEntry(w, r, queueID, parts[2], true)
	case len(parts) == 3 && parts[1] == "actions":
		h.handleAction(w, r, queueID, parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleQueueRoot(w http.ResponseWriter, r *http.Request, queueID string) {
	switch r.Method {
	case http.MethodGet:
		q := h.engine.Queue(queueID)
		if q == nil {
			writeError(w, http.StatusNotFound, "not_found", "queue not found")
			return
		}
		writeJSON(w, http.StatusOK, q)
	case http.MethodDelete:
		q := h.engine.Queue(queueID)
		if q == nil {
			writeError(w, http.StatusNotFound, "not_found", "queue not found")
			return
		}
		if q.IsDefault {
			writeError(w, http.StatusConflict, "default_queue", "the default queue cannot be deleted")
			return
		}
		h.engine.DeleteQueue(r.Context(), queueID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAddEntry(w http.ResponseWriter, r *http.Request, queueID string, inProgress bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req addEntryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if req.User == nil || strings.TrimSpace(req.User.ID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user with id is required")
		return
	}

	var entry *models.QueueEntry
	if inProgress {
		entry = h.engine.AddUserToInProgress(r.Context(), queueID, req.User, req.Note)
	} else {
		entry = h.engine.AddUserToQueue(r.Context(), queueID, req.User, req.Note)
	}
	if entry == nil {
		writeError(w, http.StatusConflict, "rejected", "queue missing, duplicate entry, or limit reached")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleRemoveEntry(w http.ResponseWriter, r *http.Request, queueID, userID string, inProgress bool) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var entry *models.QueueEntry
	if inProgress {
		entry = h.engine.RemoveUserFromInProgress(r.Context(), queueID, userID)
	} else {
		entry = h.engine.RemoveUserFromQueue(r.Context(), queueID, userID)
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "not_found", "queue or entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, queueID, action string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch action {
	case "draw":
		var req drawRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		switch req.DrawType {
		case models.DrawFirst, models.DrawUser, models.DrawRandom:
		default:
			writeError(w, http.StatusBadRequest, "invalid_request", "draw_type must be first, user, or random")
			return
		}
		entry := h.engine.DrawUserFromQueue(r.Context(), queueID, req.DrawType, req.UserID, req.AddToInProgress)
		if entry == nil {
			writeError(w, http.StatusConflict, "rejected", "queue missing, empty, or no matching entry")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case "clear":
		h.engine.ClearQueue(r.Context(), queueID)
		w.WriteHeader(http.StatusNoContent)
	case "clear-in-progress":
		h.engine.ClearInProgress(r.Context(), queueID)
		w.WriteHeader(http.StatusNoContent)
	case "pause":
		h.engine.PauseQueue(r.Context(), queueID)
		w.WriteHeader(http.StatusNoContent)
	case "resume":
		h.engine.ResumeQueue(r.Context(), queueID)
		w.WriteHeader(http.StatusNoContent)
	case "enable":
		var req enableRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		h.engine.SetQueueEnabled(r.Context(), queueID, req.Enabled)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handlePosition(w http.ResponseWriter, r *http.Request, queueID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	position := h.engine.GetUserPositionInQueue(queueID, userID)
	writeJSON(w, http.StatusOK, map[string]int{"position": position})
}

func (h *Handler) handleLocation(w http.ResponseWriter, r *http.Request, queueID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	location := h.engine.GetUserLocation(queueID, userID)
	writeJSON(w, http.StatusOK, map[string]models.Location{"location": location})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}
