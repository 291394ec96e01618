package usecase

import (
	"strconv"
	"strings"

	"github.com/karimsalah/crm-insights/internal/entity"
)

// Criteria is the composable lead filter. Every field defaults to "pass":
// the zero value is the identity filter. Value bounds arrive as strings
// straight from the UI; non-numeric input means no bound, never exclusion.
type Criteria struct {
	Assignee   string `json:"assignee,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Status     string `json:"status,omitempty"`
	SearchText string `json:"searchText,omitempty"`
	ValueMin   string `json:"valueMin,omitempty"`
	ValueMax   string `json:"valueMax,omitempty"`
	DateFrom   string `json:"dateFrom,omitempty"`
	DateTo     string `json:"dateTo,omitempty"`
}

func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Filter applies all criteria with logical AND, preserving input order and
// never mutating the source slice.
func Filter(leads []entity.Lead, c Criteria) []entity.Lead {
	if c.IsZero() {
		return leads
	}

	assignee := strings.TrimSpace(c.Assignee)
	minVal, hasMin := parseBound(c.ValueMin)
	maxVal, hasMax := parseBound(c.ValueMax)
	search := strings.ToLower(c.SearchText)

	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if assignee != "" && strings.TrimSpace(lead.AssignedTo) != assignee {
			continue
		}
		if c.Stage != "" && !strings.EqualFold(lead.Stage, c.Stage) {
			continue
		}
		if c.Status != "" && !strings.EqualFold(lead.Status, c.Status) {
			continue
		}
		if search != "" && !matchesSearch(lead, search) {
			continue
		}
		if hasMin && lead.Value < minVal {
			continue
		}
		if hasMax && lead.Value > maxVal {
			continue
		}
		if !InRange(lead.LastActionAt(), c.DateFrom, c.DateTo) {
			continue
		}
		out = append(out, lead)
	}
	return out
}

func matchesSearch(lead entity.Lead, needle string) bool {
	return strings.Contains(strings.ToLower(lead.Stage), needle) ||
		strings.Contains(strings.ToLower(lead.Name), needle) ||
		strings.Contains(strings.ToLower(lead.AssignedTo), needle)
}

func parseBound(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
