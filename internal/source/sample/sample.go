// Package sample implements the final retrieval tier: a static sample of
// each source embedded in the binary. It never fails.
package sample

import (
	"context"
	"embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/source"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Load returns the embedded sample records for system.
func Load(system model.SourceSystem) ([]model.RawRecord, error) {
	raw, err := dataFS.ReadFile("data/" + string(system) + ".yaml")
	if err != nil {
		return nil, eris.Wrapf(err, "sample: no embedded data for %s", system)
	}
	var records []model.RawRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, eris.Wrapf(err, "sample: parse %s", system)
	}
	return records, nil
}

// Adapter serves embedded records, filtering them locally by criteria.
type Adapter struct {
	name       string
	system     model.SourceSystem
	records    []model.RawRecord
	normalizer *normalize.Normalizer
}

var _ source.Adapter = (*Adapter)(nil)

// New creates a sample tier over records. Filtering interprets records with
// schema, the same table the normalizer uses for this source.
func New(name string, schema normalize.Schema, records []model.RawRecord) *Adapter {
	return &Adapter{
		name:       name,
		system:     schema.System,
		records:    records,
		normalizer: normalize.New(schema),
	}
}

// NewEmbedded creates a sample tier backed by the embedded data for the
// schema's source system.
func NewEmbedded(name string, schema normalize.Schema) (*Adapter, error) {
	records, err := Load(schema.System)
	if err != nil {
		return nil, err
	}
	return New(name, schema, records), nil
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return a.name }

// Search implements source.Adapter. Records that would not normalize are
// skipped. A filter that matches nothing yields an empty result, not an error.
func (a *Adapter) Search(_ context.Context, crit model.Criteria) ([]model.RawRecord, error) {
	crit = crit.Normalized()

	out := make([]model.RawRecord, 0, len(a.records))
	for _, raw := range a.records {
		if len(out) >= crit.Limit {
			break
		}
		inst, err := a.normalizer.Normalize(raw, a.system)
		if err != nil || !crit.Matches(inst) {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}
