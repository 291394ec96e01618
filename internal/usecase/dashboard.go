package usecase

import (
	"context"
	"strings"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
)

// LeadReader hands out fresh snapshots of the merged lead collection. Every
// computation re-reads; nothing is cached, so a change notification only
// has to trigger a re-invocation.
type LeadReader struct {
	Store storage.Store
}

// Snapshot merges the primary and secondary collections by id, later
// entries winning on collision, preserving first-seen order.
func (r *LeadReader) Snapshot(ctx context.Context) []entity.Lead {
	primary := storage.LoadLeads(ctx, r.Store, storage.KeyLeads)
	secondary := storage.LoadLeads(ctx, r.Store, storage.KeyLeadsSecondary)
	return MergeLeads(primary, secondary)
}

// MergeLeads dedups two collections by id. Later entries overwrite earlier
// ones in place, so the result keeps the position of the first occurrence.
func MergeLeads(collections ...[]entity.Lead) []entity.Lead {
	merged := make([]entity.Lead, 0)
	index := make(map[string]int)
	for _, collection := range collections {
		for _, lead := range collection {
			if at, seen := index[lead.ID]; seen && lead.ID != "" {
				merged[at] = lead
				continue
			}
			index[lead.ID] = len(merged)
			merged = append(merged, lead)
		}
	}
	return merged
}

// ScopeLeads applies the dashboard's global filter header: an optional
// assignee and an optional date window on the last-action date.
func ScopeLeads(leads []entity.Lead, assignee, dateFrom, dateTo string) []entity.Lead {
	sel := strings.TrimSpace(assignee)
	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if sel != "" && strings.TrimSpace(lead.AssignedTo) != sel {
			continue
		}
		if !InRange(lead.LastActionAt(), dateFrom, dateTo) {
			continue
		}
		out = append(out, lead)
	}
	return out
}

// LeadsStats are the dashboard's quick-number counters.
type LeadsStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Duplicate int `json:"duplicate"`
	Pending   int `json:"pending"`
	ColdCall  int `json:"coldCall"`
}

// ComputeStats counts over whichever of stage/status carries the label,
// matching how the dashboard treats the two taxonomies interchangeably for
// its headline numbers.
func ComputeStats(leads []entity.Lead) LeadsStats {
	stats := LeadsStats{Total: len(leads)}
	for _, lead := range leads {
		if lead.Stage == "new" || lead.Status == "new" {
			stats.New++
		}
		if lead.Stage == "in-progress" || lead.Status == "in-progress" {
			stats.Pending++
		}
		if lead.IsDuplicate {
			stats.Duplicate++
		}
		if lead.Source == "direct" || lead.Source == "cold-call" {
			stats.ColdCall++
		}
	}
	return stats
}
