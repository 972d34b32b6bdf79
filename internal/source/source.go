// Package source defines the retrieval-tier contract shared by every upstream
// adapter and groups tiers into logical sources.
package source

import (
	"context"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
)

// Adapter is one retrieval tier of one logical source. It translates
// criteria into the tier's native query dialect and returns raw records.
// Adapters never fall back on their own; a failure is returned as an error.
type Adapter interface {
	Name() string
	Search(ctx context.Context, c model.Criteria) ([]model.RawRecord, error)
}

// Definition describes one logical source: how its records are named and the
// ordered tiers that can produce them. The last tier must not fail.
type Definition struct {
	System model.SourceSystem
	Schema normalize.Schema
	Tiers  []Adapter
}

// Names returns the tier names in order.
func (d Definition) Names() []string {
	names := make([]string, len(d.Tiers))
	for i, t := range d.Tiers {
		names[i] = t.Name()
	}
	return names
}

// Func adapts a plain function into an Adapter.
type Func struct {
	TierName string
	Fn       func(ctx context.Context, c model.Criteria) ([]model.RawRecord, error)
}

// Name implements Adapter.
func (f Func) Name() string { return f.TierName }

// Search implements Adapter.
func (f Func) Search(ctx context.Context, c model.Criteria) ([]model.RawRecord, error) {
	return f.Fn(ctx, c)
}
