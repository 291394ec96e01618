package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/karimsalah/crm-insights/internal/usecase"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func respondUsecaseError(w http.ResponseWriter, err error) {
	if usecase.IsDomainError(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal error")
}

// criteriaFromQuery maps the filter query params onto the engine's
// criteria. Unknown params are ignored; absent ones mean "pass".
func criteriaFromQuery(r *http.Request) usecase.Criteria {
	q := r.URL.Query()
	return usecase.Criteria{
		Assignee:   q.Get("assignee"),
		Stage:      q.Get("stage"),
		Status:     q.Get("status"),
		SearchText: q.Get("q"),
		ValueMin:   q.Get("valueMin"),
		ValueMax:   q.Get("valueMax"),
		DateFrom:   q.Get("dateFrom"),
		DateTo:     q.Get("dateTo"),
	}
}
