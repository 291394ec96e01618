package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

type DelayHandler struct {
	reader        *usecase.LeadReader
	store         storage.Store
	thresholdDays int
}

func NewDelayHandler(reader *usecase.LeadReader, store storage.Store, thresholdDays int) *DelayHandler {
	if thresholdDays <= 0 {
		thresholdDays = usecase.DefaultDelayThresholdDays
	}
	return &DelayHandler{
		reader:        reader,
		store:         store,
		thresholdDays: thresholdDays,
	}
}

type delayedLeadsResponse struct {
	ThresholdDays int                   `json:"thresholdDays"`
	StageCounts   map[string]int        `json:"stageCounts"`
	Leads         []usecase.DelayedLead `json:"leads"`
}

// List serves the follow-up widget: the delayed projection plus the
// zero-filled stage-chip counts. `threshold` overrides the configured
// number of days; `status` narrows to one chip.
func (h *DelayHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	threshold := h.thresholdDays
	if parsed, err := strconv.Atoi(q.Get("threshold")); err == nil && parsed > 0 {
		threshold = parsed
	}

	dateFrom, dateTo := q.Get("dateFrom"), q.Get("dateTo")
	now := time.Now()

	leads := h.reader.Snapshot(ctx)

	stageNames := entity.Names(storage.LoadStageDefs(ctx, h.store, storage.KeyStages))
	if len(stageNames) == 0 {
		stageNames = entity.DefaultStageNames
	}

	respondJSON(w, http.StatusOK, delayedLeadsResponse{
		ThresholdDays: threshold,
		StageCounts:   usecase.DelayedStageCounts(leads, stageNames, threshold, now, dateFrom, dateTo),
		Leads:         usecase.DelayedLeads(leads, threshold, now, dateFrom, dateTo, q.Get("status")),
	})
}
