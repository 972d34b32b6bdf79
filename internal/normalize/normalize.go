package normalize

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// ErrMalformedRecord marks a raw record that cannot become an Institution.
var ErrMalformedRecord = eris.New("malformed record")

// ErrUnknownSource is returned when no schema is registered for a source.
var ErrUnknownSource = eris.New("unknown source system")

// Normalizer resolves raw records using the registered schemas.
type Normalizer struct {
	schemas map[model.SourceSystem]Schema
}

// New creates a Normalizer for the given source schemas.
func New(schemas ...Schema) *Normalizer {
	n := &Normalizer{schemas: make(map[model.SourceSystem]Schema, len(schemas))}
	for _, s := range schemas {
		n.schemas[s.System] = s
	}
	return n
}

// Normalize converts one raw record. It returns an error wrapping
// ErrMalformedRecord when assets are not positive or the name is empty.
// Unparsable numeric fields default to zero. A record without a charter or
// cert number gets an id derived from its name and state.
func (n *Normalizer) Normalize(raw model.RawRecord, system model.SourceSystem) (model.Institution, error) {
	schema, ok := n.schemas[system]
	if !ok {
		return model.Institution{}, eris.Wrapf(ErrUnknownSource, "normalize: %s", system)
	}

	str := func(attr Attribute) string {
		v, ok := schema.lookup(raw, attr)
		if !ok {
			return ""
		}
		return stringValue(v)
	}
	num := func(attr Attribute) float64 {
		v, ok := schema.lookup(raw, attr)
		if !ok {
			return 0
		}
		f, ok := parseNumber(v)
		if !ok {
			return 0
		}
		return f
	}
	whole := func(attr Attribute) int64 {
		return scaled(num(attr), schema.inThousands(attr))
	}

	inst := model.Institution{
		Name:         cleanName(str(AttrName)),
		Kind:         system.Kind(),
		City:         cleanName(str(AttrCity)),
		State:        cleanState(str(AttrState)),
		AssetsUSD:    whole(AttrAssets),
		DepositsUSD:  whole(AttrDeposits),
		ROAPct:       num(AttrROA),
		BranchCount:  int(whole(AttrBranches)),
		RegulatoryID: str(AttrRegulatoryID),
		Source:       system,
	}
	if inst.Kind == model.KindCreditUnion {
		inst.MemberCount = whole(AttrMembers)
	}

	switch {
	case inst.AssetsUSD <= 0:
		return model.Institution{}, eris.Wrapf(ErrMalformedRecord, "normalize: %s: non-positive assets", system)
	case inst.Name == "":
		return model.Institution{}, eris.Wrapf(ErrMalformedRecord, "normalize: %s: empty name", system)
	}
	key := inst.RegulatoryID
	if key == "" {
		key = slug(inst.Name, inst.State)
	}
	inst.ID = model.InstitutionID(system, key)
	return inst, nil
}

// Batch is the result of normalizing a batch of raw records.
type Batch struct {
	Institutions []model.Institution
	Dropped      int
	Duplicates   int
}

// NormalizeAll normalizes records in source order, dropping malformed ones.
// When two records resolve to the same id the later one replaces the earlier
// one in place, so the batch keeps first-seen ordering with last-write-wins
// values. Every institution is stamped with the producing tier.
func (n *Normalizer) NormalizeAll(records []model.RawRecord, system model.SourceSystem, tier string) Batch {
	var b Batch
	index := make(map[string]int, len(records))
	for _, raw := range records {
		inst, err := n.Normalize(raw, system)
		if err != nil {
			b.Dropped++
			continue
		}
		inst.Tier = tier
		if i, seen := index[inst.ID]; seen {
			b.Institutions[i] = inst
			b.Duplicates++
			continue
		}
		index[inst.ID] = len(b.Institutions)
		b.Institutions = append(b.Institutions, inst)
	}
	return b
}
