package usecase

import (
	"context"
	"strings"

	"github.com/karimsalah/crm-insights/internal/entity"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
)

// StageConfig manages one of the two configurable vocabularies (pipeline
// stages under crmStages, lead statuses under crmStatuses). Writes replace
// the whole list and broadcast a change notification.
type StageConfig struct {
	Store    storage.Store
	Key      string
	Notifier ChangeNotifier
}

func (c *StageConfig) List(ctx context.Context) []entity.StageDefinition {
	return storage.LoadStageDefs(ctx, c.Store, c.Key)
}

// Add prepends a new definition. Name is required after trimming; identity
// is case-insensitive, so a duplicate name is rejected. Missing color/icon
// default from the name heuristics.
func (c *StageConfig) Add(ctx context.Context, def entity.StageDefinition) (entity.StageDefinition, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return entity.StageDefinition{}, &DomainError{Code: "EMPTY_NAME", Message: "name is required"}
	}
	def.NameAr = strings.TrimSpace(def.NameAr)
	def = entity.NormalizeStageDefinition(def)

	current := c.List(ctx)
	for _, existing := range current {
		if existing.Key() == def.Key() {
			return entity.StageDefinition{}, &DomainError{Code: "DUPLICATE_NAME", Message: "a definition with that name already exists"}
		}
	}

	next := append([]entity.StageDefinition{def}, current...)
	c.persist(ctx, next)
	return def, nil
}

// Remove drops every definition matching the name, case-insensitively.
// Removing an unknown name is a no-op, not an error.
func (c *StageConfig) Remove(ctx context.Context, name string) {
	key := strings.ToLower(strings.TrimSpace(name))
	current := c.List(ctx)

	next := make([]entity.StageDefinition, 0, len(current))
	for _, def := range current {
		if def.Key() != key {
			next = append(next, def)
		}
	}
	c.persist(ctx, next)
}

func (c *StageConfig) persist(ctx context.Context, defs []entity.StageDefinition) {
	storage.SaveStageDefs(ctx, c.Store, c.Key, defs)
	if c.Notifier != nil {
		_ = c.Notifier.NotifyChanged(ctx, c.Key)
	}
}

// CountByName tallies leads per definition, matching the keyOf projection
// (stage or status) case-insensitively against each definition's name.
func CountByName(defs []entity.StageDefinition, leads []entity.Lead, keyOf func(entity.Lead) string) map[string]int {
	counts := make(map[string]int, len(defs))
	for _, def := range defs {
		counts[def.Key()] = 0
	}
	for _, lead := range leads {
		k := strings.ToLower(keyOf(lead))
		if _, tracked := counts[k]; tracked {
			counts[k]++
		}
	}
	return counts
}
