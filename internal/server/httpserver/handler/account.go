package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// handleCreateAccount handles POST /accounts.
func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, http.StatusBadRequest, "IDM-SYS-4000", "invalid request body", nil)
		return
	}

	acct, err := h.accounts.CreateAccount(r.Context(), req.Balance)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/accounts/"+acct.ID)
	h.writeJSON(w, r, http.StatusAccepted, AccountResponse{
		AccountID: acct.ID,
		Balance:   acct.Balance,
	})
}

// handleNextID handles GET /ids/next.
func (h *Handler) handleNextID(w http.ResponseWriter, r *http.Request) {
	id, err := h.accounts.NextID(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, IDResponse{ID: id})
}
