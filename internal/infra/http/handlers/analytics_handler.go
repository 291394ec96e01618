package handlers

import (
	"net/http"
	"strings"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

type AnalyticsHandler struct {
	reader *usecase.LeadReader
	store  storage.Store
}

func NewAnalyticsHandler(reader *usecase.LeadReader, store storage.Store) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader, store: store}
}

type aggregateResponse struct {
	GroupBy string             `json:"groupBy"`
	Measure string             `json:"measure"`
	Op      string             `json:"op"`
	Labels  []string           `json:"labels"`
	Groups  map[string]float64 `json:"groups"`
}

// Aggregate groups the filtered snapshot and reduces one measure per
// group. The canonical label list comes from the `labels` param, the
// configured vocabulary for the group key, or the data itself for
// assignees.
func (h *AnalyticsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	groupKey, err := usecase.ParseGroupKey(q.Get("groupBy"))
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	measure := parseMeasure(q.Get("measure"))
	op := parseOperator(q.Get("op"))

	leads := usecase.Filter(h.reader.Snapshot(ctx), criteriaFromQuery(r))
	labels := h.labelsFor(r, groupKey, leads)

	respondJSON(w, http.StatusOK, aggregateResponse{
		GroupBy: string(groupKey),
		Measure: string(measure),
		Op:      string(op),
		Labels:  labels,
		Groups:  usecase.Aggregate(leads, groupKey, measure, op, labels),
	})
}

type pivotResponse struct {
	Rows      []string                      `json:"rows"`
	Cols      []string                      `json:"cols"`
	Measure   string                        `json:"measure"`
	Op        string                        `json:"op"`
	Table     map[string]map[string]float64 `json:"table"`
	RowTotals map[string]float64            `json:"rowTotals"`
}

// Pivot cross-tabulates two group keys, with per-row totals for the table
// widget.
func (h *AnalyticsHandler) Pivot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	rowKey, err := usecase.ParseGroupKey(q.Get("rows"))
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	colKey, err := usecase.ParseGroupKey(valueOr(q.Get("cols"), string(usecase.GroupByAssignee)))
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	measure := parseMeasure(q.Get("measure"))
	op := parseOperator(q.Get("op"))

	leads := usecase.Filter(h.reader.Snapshot(ctx), criteriaFromQuery(r))
	rowLabels := h.labelsFromParam(r, "rowLabels", rowKey, leads)
	colLabels := h.labelsFromParam(r, "colLabels", colKey, leads)

	table := usecase.Pivot(leads, rowKey, colKey, measure, op, rowLabels, colLabels)

	rowTotals := make(map[string]float64, len(rowLabels))
	for row, cells := range table {
		var total float64
		for _, v := range cells {
			total += v
		}
		rowTotals[row] = total
	}

	respondJSON(w, http.StatusOK, pivotResponse{
		Rows:      rowLabels,
		Cols:      colLabels,
		Measure:   string(measure),
		Op:        string(op),
		Table:     table,
		RowTotals: rowTotals,
	})
}

func (h *AnalyticsHandler) labelsFor(r *http.Request, key usecase.GroupKey, leads []entity.Lead) []string {
	return h.labelsFromParam(r, "labels", key, leads)
}

func (h *AnalyticsHandler) labelsFromParam(r *http.Request, param string, key usecase.GroupKey, leads []entity.Lead) []string {
	if raw := r.URL.Query().Get(param); raw != "" {
		var labels []string
		for _, label := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(label); trimmed != "" {
				labels = append(labels, trimmed)
			}
		}
		if len(labels) > 0 {
			return labels
		}
	}

	switch key {
	case usecase.GroupByStage:
		return vocabularyOrDefault(h, r, storage.KeyStages)
	case usecase.GroupByStatus:
		return vocabularyOrDefault(h, r, storage.KeyStatuses)
	default:
		// Assignees have no configured vocabulary; derive one from the
		// data in first-seen order.
		seen := make(map[string]bool)
		var labels []string
		for _, lead := range leads {
			name := strings.TrimSpace(lead.AssignedTo)
			if name != "" && !seen[name] {
				seen[name] = true
				labels = append(labels, name)
			}
		}
		return labels
	}
}

func vocabularyOrDefault(h *AnalyticsHandler, r *http.Request, key string) []string {
	defs := storage.LoadStageDefs(r.Context(), h.store, key)
	if names := entity.Names(defs); len(names) > 0 {
		return names
	}
	return entity.DefaultStageNames
}

func parseMeasure(s string) usecase.Measure {
	switch usecase.Measure(strings.ToLower(s)) {
	case usecase.MeasureValue:
		return usecase.MeasureValue
	case usecase.MeasureProrated:
		return usecase.MeasureProrated
	default:
		return usecase.MeasureCount
	}
}

func parseOperator(s string) usecase.Operator {
	switch usecase.Operator(strings.ToLower(s)) {
	case usecase.OpAvg:
		return usecase.OpAvg
	case usecase.OpMin:
		return usecase.OpMin
	case usecase.OpMax:
		return usecase.OpMax
	default:
		return usecase.OpSum
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
