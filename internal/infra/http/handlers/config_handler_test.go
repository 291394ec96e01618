package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/queue"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

func newConfigRouter(store storage.Store, kind, key string) *chi.Mux {
	service := &usecase.StageConfig{Store: store, Key: key, Notifier: queue.NoopNotifier{}}
	h := NewConfigHandler(service, &usecase.LeadReader{Store: store}, kind)

	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{name}", h.Remove)
	return r
}

func TestConfigAddAndList(t *testing.T) {
	store := storage.NewMemoryStore()
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Stage: "negotiation"},
		{ID: "2", Stage: "Negotiation"},
	})
	router := newConfigRouter(store, "stages", storage.KeyStages)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Negotiation","nameAr":"تفاوض"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created entity.StageDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Negotiation", created.Name)
	assert.NotEmpty(t, created.Color)
	assert.NotEmpty(t, created.Icon)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []definitionWithCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Negotiation", listed[0].Name)
	assert.Equal(t, 2, listed[0].Leads)
}

func TestConfigAdd_Rejections(t *testing.T) {
	router := newConfigRouter(storage.NewMemoryStore(), "stages", storage.KeyStages)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"won"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"WON"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigRemove(t *testing.T) {
	store := storage.NewMemoryStore()
	storage.SaveStageDefs(context.Background(), store, storage.KeyStages, []entity.StageDefinition{
		{Name: "won"}, {Name: "lost"},
	})
	router := newConfigRouter(store, "stages", storage.KeyStages)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/won", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	defs := storage.LoadStageDefs(context.Background(), store, storage.KeyStages)
	require.Len(t, defs, 1)
	assert.Equal(t, "lost", defs[0].Name)
}

func TestConfigStatuses_CountsByStatus(t *testing.T) {
	store := storage.NewMemoryStore()
	storage.SaveStageDefs(context.Background(), store, storage.KeyStatuses, []entity.StageDefinition{
		{Name: "new"},
	})
	seedLeads(t, store, []entity.Lead{
		{ID: "1", Stage: "new", Status: "qualified"},
		{ID: "2", Stage: "qualified", Status: "new"},
	})
	router := newConfigRouter(store, "statuses", storage.KeyStatuses)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var listed []definitionWithCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	// Status, not stage, feeds the statuses taxonomy.
	assert.Equal(t, 1, listed[0].Leads)
}
