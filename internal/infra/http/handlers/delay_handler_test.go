package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

func newDelayHandler(store storage.Store) *DelayHandler {
	return NewDelayHandler(&usecase.LeadReader{Store: store}, store, 7)
}

func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(time.RFC3339)
}

func TestDelayList(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Name: "Acme", Phone: "0501234567", Status: "new", LastContact: daysAgo(10), Notes: "no answer"},
		{ID: "2", Name: "Globex", Status: "qualified", LastContact: daysAgo(2)},
		{ID: "3", Name: "Umbrella", Status: "lost", LastContact: daysAgo(30)},
	})
	h := newDelayHandler(store)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got delayedLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 7, got.ThresholdDays)
	require.Len(t, got.Leads, 1)
	assert.Equal(t, "Acme", got.Leads[0].LeadName)
	assert.Equal(t, "(050*****)", got.Leads[0].Mobile)
	assert.Equal(t, usecase.CategoryNoAnswerFirstCall, got.Leads[0].Category)

	// Zero-filled over the default stage vocabulary.
	assert.Equal(t, 1, got.StageCounts["new"])
	assert.Equal(t, 0, got.StageCounts["qualified"])
	assert.Contains(t, got.StageCounts, "lost")
}

func TestDelayList_ThresholdOverride(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Status: "new", LastContact: daysAgo(5)},
	})
	h := newDelayHandler(store)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed?threshold=3", nil))

	var got delayedLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.ThresholdDays)
	assert.Len(t, got.Leads, 1)

	// Bogus override falls back to the configured threshold.
	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed?threshold=soon", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7, got.ThresholdDays)
	assert.Empty(t, got.Leads)
}

func TestDelayList_StatusChip(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Status: "new", LastContact: daysAgo(10)},
		{ID: "2", Status: "qualified", LastContact: daysAgo(10)},
	})
	h := newDelayHandler(store)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed?status=qualified", nil))

	var got delayedLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Leads, 1)
	assert.Equal(t, "2", got.Leads[0].ID)
}

func TestDelayList_ConfiguredStageVocabulary(t *testing.T) {
	store := storage.NewMemoryStore()
	storage.SaveStageDefs(context.Background(), store, storage.KeyStages,
		[]entity.StageDefinition{{Name: "new"}, {Name: "Prospect"}})
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Status: "new", LastContact: daysAgo(10)},
	})
	h := newDelayHandler(store)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed", nil))

	var got delayedLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]int{"new": 1, "Prospect": 0}, got.StageCounts)
}

func TestNewDelayHandler_NonPositiveThresholdDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	h := NewDelayHandler(&usecase.LeadReader{Store: store}, store, 0)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads/delayed", nil))

	var got delayedLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, usecase.DefaultDelayThresholdDays, got.ThresholdDays)
}
