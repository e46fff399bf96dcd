package source

import (
	"fmt"

	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/universe"
)

// Instances is the list of per-tenant configuration records of one file type.
type Instances []map[string]any

// LoadInstances reads an instances.json array.
func (s *Store) LoadInstances(path string) (Instances, error) {
	var raw []any
	if err := s.ReadJSON(path, &raw); err != nil {
		return nil, errors.WrapResource("load", "instances", path, err)
	}
	out := make(Instances, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Find returns the first instance whose tenantId equals tenantID.
func (in Instances) Find(tenantID string) (map[string]any, error) {
	for _, inst := range in {
		if id, ok := inst["tenantId"]; ok && fmt.Sprint(id) == tenantID {
			return inst, nil
		}
	}
	return nil, errors.NewNotFoundError("tenant instance", tenantID)
}

// Catalogue returns every field name known across the instances.
func (in Instances) Catalogue() record.FieldSet {
	return universe.CatalogueFromInstances(in)
}
