package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mberrie/todoapp-service/internal/todo"
)

// Handler exposes the admin-only task endpoints. Route middleware has
// already verified the admin role.
type Handler struct {
	todos  *todo.Service
	logger *zap.SugaredLogger
}

func NewHandler(todos *todo.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{todos: todos, logger: logger}
}

// List returns every todo regardless of owner.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.ListAll(r.Context())
	if err != nil {
		h.logger.Errorw("admin list todos failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, todos)
}

// Delete removes any todo by id, ignoring ownership.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid todo id"})
		return
	}
	if err := h.todos.DeleteAny(r.Context(), id); err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "todo not found"})
			return
		}
		h.logger.Errorw("admin delete todo failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "delete failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
