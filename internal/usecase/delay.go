package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/karimsalah/crm-insights/internal/entity"
)

const DefaultDelayThresholdDays = 7

// Category is the follow-up bucket derived from a lead's notes.
type Category string

const (
	CategoryFollowUpAfterMeeting Category = "followUpAfterMeeting"
	CategoryRescheduleMeeting    Category = "rescheduleMeeting"
	CategoryNoAnswerFirstCall    Category = "noAnswer1stCall"
	CategoryFollowUp             Category = "followUp"
)

// Categories in scan priority order, used by the worker gauges and digest.
var Categories = []Category{
	CategoryFollowUpAfterMeeting,
	CategoryRescheduleMeeting,
	CategoryNoAnswerFirstCall,
	CategoryFollowUp,
}

// Only leads still being worked can be delayed; closed and lost ones are
// nobody's follow-up problem.
var activeStatuses = map[string]bool{
	"new":         true,
	"qualified":   true,
	"in-progress": true,
}

// IsDelayed reports whether an active-status lead has gone without contact
// for strictly more than thresholdDays full days as of now. A last-action
// timestamp that does not parse means the lead is NOT flagged — the
// opposite of the range predicate's policy, and deliberate: a broken date
// should not page a salesperson.
func IsDelayed(lead entity.Lead, thresholdDays int, now time.Time) bool {
	if !activeStatuses[lead.Status] {
		return false
	}

	lastAction, ok := parseWhen(lead.LastActionAt())
	if !ok {
		return false
	}

	days := int(now.Sub(lastAction).Hours() / 24)
	return days > thresholdDays
}

// Keyword rules in priority order; each checks an English and an Arabic
// marker. First match wins.
var categoryRules = []struct {
	en, ar string
	cat    Category
}{
	{"meeting", "اجتماع", CategoryFollowUpAfterMeeting},
	{"reschedule", "إعادة", CategoryRescheduleMeeting},
	{"no answer", "لا يرد", CategoryNoAnswerFirstCall},
}

func ClassifyCategory(lead entity.Lead) Category {
	notes := strings.ToLower(lead.Notes)
	for _, rule := range categoryRules {
		if strings.Contains(notes, rule.en) || strings.Contains(notes, rule.ar) {
			return rule.cat
		}
	}
	return CategoryFollowUp
}

// DelayedLead is the ephemeral follow-up view: the original lead plus the
// fields the delay table renders. Never persisted.
type DelayedLead struct {
	entity.Lead

	LeadName    string   `json:"leadName"`
	Mobile      string   `json:"mobile"`
	StageDate   string   `json:"stageDate"`
	LastComment string   `json:"lastComment"`
	Category    Category `json:"category"`
}

func DelayedView(lead entity.Lead) DelayedLead {
	return DelayedLead{
		Lead:        lead,
		LeadName:    lead.Name,
		Mobile:      maskMobile(lead.Phone),
		StageDate:   lead.LastActionAt(),
		LastComment: lead.Notes,
		Category:    ClassifyCategory(lead),
	}
}

// maskMobile keeps the first three digits and hides the rest, e.g.
// "(050*****)". Empty phone masks to empty.
func maskMobile(phone string) string {
	if phone == "" {
		return ""
	}
	prefix := phone
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("(%s*****)", prefix)
}

// DelayedLeads derives the follow-up list: delayed leads projected into the
// view, range-filtered on their stage date (fail-open, like every range
// filter), optionally narrowed to a single status chip.
func DelayedLeads(leads []entity.Lead, thresholdDays int, now time.Time, dateFrom, dateTo, statusFilter string) []DelayedLead {
	out := make([]DelayedLead, 0)
	for _, lead := range leads {
		if !IsDelayed(lead, thresholdDays, now) {
			continue
		}
		view := DelayedView(lead)
		if !InRange(view.StageDate, dateFrom, dateTo) {
			continue
		}
		if statusFilter != "" && !strings.EqualFold(lead.Status, statusFilter) {
			continue
		}
		out = append(out, view)
	}
	return out
}

// DelayedStageCounts zero-fills the configured stage vocabulary and counts
// delayed leads by their status against it. Counting status against the
// stage list looks odd but matches the dashboard's chip row, where the two
// taxonomies are used interchangeably.
func DelayedStageCounts(leads []entity.Lead, stageNames []string, thresholdDays int, now time.Time, dateFrom, dateTo string) map[string]int {
	counts := make(map[string]int, len(stageNames))
	for _, name := range stageNames {
		counts[name] = 0
	}

	for _, view := range DelayedLeads(leads, thresholdDays, now, dateFrom, dateTo, "") {
		for _, name := range stageNames {
			if strings.EqualFold(name, view.Status) {
				counts[name]++
				break
			}
		}
	}
	return counts
}

// CountByCategory buckets the delayed set for the worker gauges and the
// digest mail.
func CountByCategory(delayed []DelayedLead) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, d := range delayed {
		counts[d.Category]++
	}
	return counts
}
