package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/karimsalah/crm-insights/internal/config"
	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/http/middleware"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

type LeadsHandler struct {
	reader      *usecase.LeadReader
	store       storage.Store
	notifier    usecase.ChangeNotifier
	rateLimiter *RateLimiter
}

func NewLeadsHandler(reader *usecase.LeadReader, store storage.Store, notifier usecase.ChangeNotifier) *LeadsHandler {
	return &LeadsHandler{
		reader:      reader,
		store:       store,
		notifier:    notifier,
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 writes/min per IP
	}
}

// List returns the merged collection through the filter engine. Criteria
// come from query params; with none, this is the full snapshot.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	leads := h.reader.Snapshot(r.Context())
	filtered := usecase.Filter(leads, criteriaFromQuery(r))
	respondJSON(w, http.StatusOK, filtered)
}

type replaceLeadsResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// Replace overwrites the primary collection and broadcasts the change.
// This is the only lead write surface; the dedup flag and ids come from
// the caller untouched.
func (h *LeadsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.rateLimiter.Allow(getClientIP(r)) {
		respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var leads []entity.Lead
	if err := json.NewDecoder(r.Body).Decode(&leads); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	for i := range leads {
		if leads[i].ID == "" {
			lead, err := entity.NewLead(leads[i].Name, leads[i].Email, leads[i].Phone, leads[i].Company)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			leads[i].ID = lead.ID
			if leads[i].CreatedAt == "" {
				leads[i].CreatedAt = lead.CreatedAt
			}
		}
	}

	storage.SaveLeads(ctx, h.store, storage.KeyLeads, leads)
	middleware.RecordLeadsIngested(len(leads))

	if err := h.notifier.NotifyChanged(ctx, storage.KeyLeads); err != nil {
		config.GetLogger().WithField("key", storage.KeyLeads).Warnf("change notification not published: %v", err)
	} else {
		middleware.RecordNotificationPublished()
	}

	respondJSON(w, http.StatusOK, replaceLeadsResponse{Success: true, Count: len(leads)})
}

// Stats serves the dashboard's quick numbers over the merged collection,
// scoped by the optional assignee/date params.
func (h *LeadsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads := h.reader.Snapshot(r.Context())
	scoped := usecase.ScopeLeads(leads, q.Get("assignee"), q.Get("dateFrom"), q.Get("dateTo"))
	respondJSON(w, http.StatusOK, usecase.ComputeStats(scoped))
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
