package storage

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/karimsalah/crm-insights/internal/config"
	"github.com/karimsalah/crm-insights/internal/entity"
)

// Persisted keys. The dashboard widgets all read and write through these.
const (
	KeyLeads          = "leadsData" // primary lead collection
	KeyLeadsSecondary = "leads"     // alternate collection, merged by id on read
	KeyStages         = "crmStages"
	KeyStatuses       = "crmStatuses"
	KeySearch         = "globalSearch"
)

// Store is the key-value surface the core reads snapshots from. Backends
// never surface errors here: a failed read is an absent key, a failed write
// is logged and swallowed. The advisory nature of this data makes that
// acceptable; callers always degrade to empty collections.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
}

// LoadLeads parses the JSON collection at key. Absent key, bad JSON or a
// non-array value all come back as an empty slice.
func LoadLeads(ctx context.Context, s Store, key string) []entity.Lead {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return []entity.Lead{}
	}

	var leads []entity.Lead
	if err := json.Unmarshal([]byte(raw), &leads); err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"key": key,
		}).Warnf("discarding malformed lead collection: %v", err)
		return []entity.Lead{}
	}
	if leads == nil {
		return []entity.Lead{}
	}
	return leads
}

// SaveLeads overwrites the collection at key. Failures are logged, not
// returned.
func SaveLeads(ctx context.Context, s Store, key string, leads []entity.Lead) {
	if leads == nil {
		leads = []entity.Lead{}
	}
	raw, err := json.Marshal(leads)
	if err != nil {
		config.GetLogger().WithField("key", key).Errorf("marshal lead collection: %v", err)
		return
	}
	s.Set(ctx, key, string(raw))
}

// LoadStageDefs reads a stage/status vocabulary. Legacy configs persisted
// plain name strings; both shapes normalize into full definitions with
// default color and icon.
func LoadStageDefs(ctx context.Context, s Store, key string) []entity.StageDefinition {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return []entity.StageDefinition{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		config.GetLogger().WithField("key", key).Warnf("discarding malformed vocabulary: %v", err)
		return []entity.StageDefinition{}
	}

	defs := make([]entity.StageDefinition, 0, len(entries))
	for _, entry := range entries {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			defs = append(defs, entity.NormalizeStageDefinition(entity.StageDefinition{Name: name}))
			continue
		}
		var def entity.StageDefinition
		if err := json.Unmarshal(entry, &def); err == nil && def.Name != "" {
			defs = append(defs, entity.NormalizeStageDefinition(def))
		}
	}
	return defs
}

func SaveStageDefs(ctx context.Context, s Store, key string, defs []entity.StageDefinition) {
	if defs == nil {
		defs = []entity.StageDefinition{}
	}
	raw, err := json.Marshal(defs)
	if err != nil {
		config.GetLogger().WithField("key", key).Errorf("marshal vocabulary: %v", err)
		return
	}
	s.Set(ctx, key, string(raw))
}

// LoadSearch returns the last applied global search, if any.
func LoadSearch(ctx context.Context, s Store) (entity.SearchPayload, bool) {
	raw, ok := s.Get(ctx, KeySearch)
	if !ok {
		return entity.SearchPayload{}, false
	}
	var payload entity.SearchPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		config.GetLogger().Warnf("discarding malformed search payload: %v", err)
		return entity.SearchPayload{}, false
	}
	return payload, true
}

func SaveSearch(ctx context.Context, s Store, payload entity.SearchPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		config.GetLogger().Errorf("marshal search payload: %v", err)
		return
	}
	s.Set(ctx, KeySearch, string(raw))
}

func ClearSearch(ctx context.Context, s Store) {
	s.Delete(ctx, KeySearch)
}
