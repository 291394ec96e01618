package entity

import "strings"

// StageDefinition is one entry of the configurable pipeline stage (or lead
// status) vocabulary. Identity is the lowercase name; there is no id.
type StageDefinition struct {
	Name   string `json:"name"`
	NameAr string `json:"nameAr,omitempty"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

func (d StageDefinition) Key() string {
	return strings.ToLower(d.Name)
}

// NormalizeStageDefinition fills missing display fields from the name
// heuristics. Legacy configs persisted plain name strings; those arrive
// here as definitions with only a name.
func NormalizeStageDefinition(d StageDefinition) StageDefinition {
	if d.Color == "" {
		d.Color = DefaultColorForName(d.Name)
	}
	if d.Icon == "" {
		d.Icon = DefaultIconForName(d.Name)
	}
	return d
}

func DefaultColorForName(name string) string {
	key := strings.ToLower(name)
	switch {
	case strings.Contains(key, "new"):
		return "#3b82f6"
	case strings.Contains(key, "qual"):
		return "#22c55e"
	case strings.Contains(key, "progress"):
		return "#f59e0b"
	case strings.Contains(key, "convert"), strings.Contains(key, "won"):
		return "#8b5cf6"
	case strings.Contains(key, "lost"):
		return "#ef4444"
	default:
		return "#2563eb"
	}
}

func DefaultIconForName(name string) string {
	key := strings.ToLower(name)
	switch {
	case strings.Contains(key, "new"):
		return "🆕"
	case strings.Contains(key, "qual"):
		return "✅"
	case strings.Contains(key, "progress"):
		return "⏳"
	case strings.Contains(key, "convert"), strings.Contains(key, "won"):
		return "🎉"
	case strings.Contains(key, "lost"):
		return "❌"
	default:
		return "📊"
	}
}

// DefaultStageNames is the built-in vocabulary used until an admin
// configures one.
var DefaultStageNames = []string{"new", "qualified", "in-progress", "converted", "lost"}

// Names projects a vocabulary into its canonical label list, in order.
func Names(defs []StageDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		if d.Name != "" {
			names = append(names, d.Name)
		}
	}
	return names
}
