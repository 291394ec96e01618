package usecase

import (
	"math"
	"strings"

	"github.com/karimsalah/crm-insights/internal/entity"
)

type GroupKey string

const (
	GroupByStage    GroupKey = "stage"
	GroupByStatus   GroupKey = "status"
	GroupByAssignee GroupKey = "assignee"
)

func ParseGroupKey(s string) (GroupKey, error) {
	switch GroupKey(strings.ToLower(s)) {
	case GroupByStage, "":
		return GroupByStage, nil
	case GroupByStatus:
		return GroupByStatus, nil
	case GroupByAssignee:
		return GroupByAssignee, nil
	}
	return "", &DomainError{Code: "BAD_GROUP_KEY", Message: "unknown group key: " + s}
}

// Measure selects the numeric quantity contributed by each record.
// Anything that is not count or value reads the prorated field, mirroring
// the dashboard's measure picker.
type Measure string

const (
	MeasureCount    Measure = "count"
	MeasureValue    Measure = "value"
	MeasureProrated Measure = "prorated"
)

// Operator folds a group's measures. Unknown operators accumulate as sum.
type Operator string

const (
	OpSum Operator = "sum"
	OpAvg Operator = "avg"
	OpMin Operator = "min"
	OpMax Operator = "max"
)

func (m Measure) of(lead entity.Lead) float64 {
	switch m {
	case MeasureCount:
		return 1
	case MeasureValue:
		return lead.Value
	default:
		return lead.Prorated
	}
}

func (k GroupKey) of(lead entity.Lead) string {
	switch k {
	case GroupByStatus:
		return lead.Status
	case GroupByAssignee:
		return lead.AssignedTo
	default:
		return lead.Stage
	}
}

// Aggregate groups leads by key and reduces the measure per group. The
// output holds exactly one entry per canonical label (zero-filled, matched
// case-insensitively); data labels outside the vocabulary are dropped so
// chart axes stay stable across refreshes.
func Aggregate(leads []entity.Lead, key GroupKey, measure Measure, op Operator, labels []string) map[string]float64 {
	buckets := bucketize(leads, key, labels)

	out := make(map[string]float64, len(labels))
	for _, label := range labels {
		out[label] = reduce(buckets[strings.ToLower(label)], measure, op)
	}
	return out
}

// Pivot cross-tabulates the same reduction over two categorical keys. Both
// vocabularies are caller-supplied; unmatched combinations yield 0.
func Pivot(leads []entity.Lead, rowKey, colKey GroupKey, measure Measure, op Operator, rowLabels, colLabels []string) map[string]map[string]float64 {
	table := make(map[string]map[string]float64, len(rowLabels))
	for _, row := range rowLabels {
		cells := make(map[string]float64, len(colLabels))
		for _, col := range colLabels {
			var cell []entity.Lead
			for _, lead := range leads {
				if strings.EqualFold(rowKey.of(lead), row) && strings.EqualFold(colKey.of(lead), col) {
					cell = append(cell, lead)
				}
			}
			cells[col] = reduce(cell, measure, op)
		}
		table[row] = cells
	}
	return table
}

func bucketize(leads []entity.Lead, key GroupKey, labels []string) map[string][]entity.Lead {
	canonical := make(map[string]bool, len(labels))
	for _, label := range labels {
		canonical[strings.ToLower(label)] = true
	}

	buckets := make(map[string][]entity.Lead)
	for _, lead := range leads {
		k := strings.ToLower(key.of(lead))
		if canonical[k] {
			buckets[k] = append(buckets[k], lead)
		}
	}
	return buckets
}

func reduce(group []entity.Lead, measure Measure, op Operator) float64 {
	// Empty min/max groups report 0, not ±Inf.
	if len(group) == 0 {
		return 0
	}

	var acc float64
	switch op {
	case OpMin:
		acc = math.Inf(1)
	case OpMax:
		acc = math.Inf(-1)
	}

	for _, lead := range group {
		v := measure.of(lead)
		switch op {
		case OpMin:
			acc = math.Min(acc, v)
		case OpMax:
			acc = math.Max(acc, v)
		default:
			acc += v
		}
	}

	if op == OpAvg {
		return acc / float64(len(group))
	}
	return acc
}
