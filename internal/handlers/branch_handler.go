package handlers

import (
	"encoding/json"
	"net/http"

	"rentshop-backend/internal/models"
	"rentshop-backend/internal/services"
)

type BranchHandler struct {
	Service *services.BranchService
}

func NewBranchHandler(s *services.BranchService) *BranchHandler {
	return &BranchHandler{Service: s}
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	branch, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, branch)
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid branch id", http.StatusBadRequest)
		return
	}

	branch, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

func (h *BranchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid branch id", http.StatusBadRequest)
		return
	}

	var branch models.Branch
	if err := json.NewDecoder(r.Body).Decode(&branch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	branch.ID = id

	if err := h.Service.Update(r.Context(), &branch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}
