package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
)

// SearchHandler persists the last global search so widgets can restore it.
type SearchHandler struct {
	store storage.Store
}

func NewSearchHandler(store storage.Store) *SearchHandler {
	return &SearchHandler{store: store}
}

func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	payload, ok := storage.LoadSearch(r.Context(), h.store)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (h *SearchHandler) Put(w http.ResponseWriter, r *http.Request) {
	var payload entity.SearchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if payload.FilterField == "" {
		payload.FilterField = "all"
	}
	if !entity.ValidSearchField(payload.FilterField) {
		respondError(w, http.StatusBadRequest, "unknown filter field: "+payload.FilterField)
		return
	}
	if payload.Ts == 0 {
		payload.Ts = time.Now().UnixMilli()
	}

	storage.SaveSearch(r.Context(), h.store, payload)
	respondJSON(w, http.StatusOK, payload)
}

func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	storage.ClearSearch(r.Context(), h.store)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
