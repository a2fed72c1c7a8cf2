package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rentshop-backend/internal/middleware"
	"rentshop-backend/internal/services"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(s *services.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

// List returns staff for a branch. Admins may pass ?branch_id=; everyone
// else sees their own branch.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, _ := middleware.GetBranchIDFromContext(r.Context())
	if q := r.URL.Query().Get("branch_id"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			branchID = n
		}
	}

	users, err := h.Service.ListByBranch(r.Context(), branchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetActive(r.Context(), id, req.Active); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
