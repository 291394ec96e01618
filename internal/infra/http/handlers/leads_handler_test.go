package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/queue"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

func newLeadsHandler(store storage.Store) *LeadsHandler {
	return NewLeadsHandler(&usecase.LeadReader{Store: store}, store, queue.NoopNotifier{})
}

func seedLeads(t *testing.T, store storage.Store, leads []entity.Lead) {
	t.Helper()
	storage.SaveLeads(context.Background(), store, storage.KeyLeads, leads)
}

func TestLeadsList_EmptyStore(t *testing.T) {
	h := newLeadsHandler(storage.NewMemoryStore())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestLeadsList_AppliesFilterParams(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Name: "Acme", Stage: "new", AssignedTo: "sara", Value: 100},
		{ID: "2", Name: "Globex", Stage: "qualified", AssignedTo: "omar", Value: 900},
	})
	h := newLeadsHandler(store)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/leads?stage=QUALIFIED&valueMin=500", nil))

	var got []entity.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestLeadsReplace_PersistsAndAssignsIDs(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newLeadsHandler(store)

	body := `[
		{"id":"1","name":"Acme","stage":"new"},
		{"name":"Globex","email":"sales@globex.test"}
	]`
	rec := httptest.NewRecorder()
	h.Replace(rec, httptest.NewRequest(http.MethodPut, "/api/leads", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"count":2}`, rec.Body.String())

	saved := storage.LoadLeads(context.Background(), store, storage.KeyLeads)
	require.Len(t, saved, 2)
	assert.Equal(t, "1", saved[0].ID)
	assert.NotEmpty(t, saved[1].ID)
	assert.NotEmpty(t, saved[1].CreatedAt)
}

type failingNotifier struct{}

func (failingNotifier) NotifyChanged(context.Context, string) error {
	return errors.New("channel closed")
}

func TestLeadsReplace_NotifierFailureStillPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	h := NewLeadsHandler(&usecase.LeadReader{Store: store}, store, failingNotifier{})

	rec := httptest.NewRecorder()
	h.Replace(rec, httptest.NewRequest(http.MethodPut, "/api/leads",
		strings.NewReader(`[{"id":"1","name":"Acme"}]`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, storage.LoadLeads(context.Background(), store, storage.KeyLeads), 1)
}

func TestLeadsReplace_InvalidJSON(t *testing.T) {
	h := newLeadsHandler(storage.NewMemoryStore())

	rec := httptest.NewRecorder()
	h.Replace(rec, httptest.NewRequest(http.MethodPut, "/api/leads", strings.NewReader("{broken")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadsReplace_RateLimited(t *testing.T) {
	h := newLeadsHandler(storage.NewMemoryStore())
	h.rateLimiter = NewRateLimiter(2, time.Minute)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/leads", strings.NewReader("[]"))
		req.Header.Set("X-Real-IP", "10.0.0.9")
		h.Replace(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}

func TestLeadsStats(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Stage: "new", Status: "new", AssignedTo: "sara", LastContact: "2024-03-05T10:00:00Z"},
		{ID: "2", Stage: "in-progress", Status: "in-progress", AssignedTo: "omar", LastContact: "2024-03-06T10:00:00Z", IsDuplicate: true},
	})
	h := newLeadsHandler(store)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/leads/stats", nil))

	var got usecase.LeadsStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, usecase.LeadsStats{Total: 2, New: 1, Pending: 1, Duplicate: 1}, got)

	// Scoped to one assignee.
	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/leads/stats?assignee=sara", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := &RateLimiter{
		visitors: map[string]*visitor{},
		limit:    1,
		window:   10 * time.Millisecond,
	}

	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Allow("ip"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-IP", "5.6.7.8")
	assert.Equal(t, "1.2.3.4", getClientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "5.6.7.8", getClientIP(req))

	req.Header.Del("X-Real-IP")
	assert.Equal(t, req.RemoteAddr, getClientIP(req))
}
