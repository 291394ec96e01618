package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/http/middleware"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

// ConfigHandler exposes one vocabulary (stages or statuses) as a small
// admin CRUD. Two instances are mounted, one per taxonomy.
type ConfigHandler struct {
	service *usecase.StageConfig
	reader  *usecase.LeadReader
	kind    string // "stages" | "statuses", metric label and count field
}

func NewConfigHandler(service *usecase.StageConfig, reader *usecase.LeadReader, kind string) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		reader:  reader,
		kind:    kind,
	}
}

type definitionWithCount struct {
	entity.StageDefinition
	Leads int `json:"leads"`
}

// List returns the vocabulary in configured order, each entry annotated
// with how many leads currently carry its label.
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defs := h.service.List(ctx)

	counts := usecase.CountByName(defs, h.reader.Snapshot(ctx), h.countField())

	out := make([]definitionWithCount, 0, len(defs))
	for _, def := range defs {
		out = append(out, definitionWithCount{
			StageDefinition: def,
			Leads:           counts[def.Key()],
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *ConfigHandler) Add(w http.ResponseWriter, r *http.Request) {
	var def entity.StageDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	created, err := h.service.Add(r.Context(), def)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}

	middleware.RecordConfigChange(h.kind, "add")
	respondJSON(w, http.StatusCreated, created)
}

func (h *ConfigHandler) Remove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	h.service.Remove(r.Context(), name)
	middleware.RecordConfigChange(h.kind, "remove")
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ConfigHandler) countField() func(entity.Lead) string {
	if h.kind == "statuses" {
		return func(l entity.Lead) string { return l.Status }
	}
	return func(l entity.Lead) string { return l.Stage }
}
