// Package query filters, sorts and paginates a lead list. All options are
// passed explicitly; the package holds no state.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// Sort keys.
const (
	SortAssets = "assets"
	SortScore  = "score"
	SortName   = "name"
)

// DefaultPageSize is used when Options.PageSize is unset.
const DefaultPageSize = 25

// MaxPageSize caps Options.PageSize.
const MaxPageSize = 500

// Options selects and orders leads. Zero values mean "no filter".
type Options struct {
	State    string           `json:"state,omitempty"`
	Kind     model.Kind       `json:"kind,omitempty"`
	Status   model.LeadStatus `json:"status,omitempty"`
	MinScore int              `json:"min_score,omitempty"`
	Search   string           `json:"search,omitempty"`
	SortBy   string           `json:"sort_by,omitempty"`
	Desc     bool             `json:"desc,omitempty"`
	Page     int              `json:"page,omitempty"`
	PageSize int              `json:"page_size,omitempty"`
}

// Validate rejects unknown enum values and negative numbers.
func (o Options) Validate() error {
	switch o.Kind {
	case "", model.KindCreditUnion, model.KindCommunityBank:
	default:
		return eris.Errorf("query: unknown kind %q", o.Kind)
	}
	if o.Status != "" && !o.Status.Valid() {
		return eris.Errorf("query: unknown status %q", o.Status)
	}
	switch o.SortBy {
	case "", SortAssets, SortScore, SortName:
	default:
		return eris.Errorf("query: unknown sort key %q", o.SortBy)
	}
	if o.MinScore < 0 || o.Page < 0 || o.PageSize < 0 {
		return eris.New("query: min_score, page and page_size must not be negative")
	}
	return nil
}

// Page is one page of results.
type Page struct {
	Leads    []model.Lead `json:"leads"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Pages    int          `json:"pages"`
}

// Apply filters leads, sorts them and returns the requested page. The input
// slice is not modified. Page numbers start at 1 and are clamped to the last
// page.
func Apply(leads []model.Lead, opts Options) Page {
	filtered := Filter(leads, opts)
	Sort(filtered, opts.SortBy, opts.Desc)

	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	pages := (len(filtered) + size - 1) / size
	page := max(opts.Page, 1)
	if pages > 0 {
		page = min(page, pages)
	}

	lo := min((page-1)*size, len(filtered))
	hi := min(lo+size, len(filtered))
	return Page{
		Leads:    filtered[lo:hi],
		Total:    len(filtered),
		Page:     page,
		PageSize: size,
		Pages:    pages,
	}
}

// Filter returns a new slice with the leads that match opts.
func Filter(leads []model.Lead, opts Options) []model.Lead {
	state := strings.ToUpper(strings.TrimSpace(opts.State))
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		switch {
		case state != "" && l.State != state:
		case opts.Kind != "" && l.Kind != opts.Kind:
		case opts.Status != "" && l.Status != opts.Status:
		case l.Score < opts.MinScore:
		case search != "" && !matchesSearch(l, search):
		default:
			out = append(out, l)
		}
	}
	return out
}

func matchesSearch(l model.Lead, term string) bool {
	return strings.Contains(strings.ToLower(l.Name), term) ||
		strings.Contains(strings.ToLower(l.City), term) ||
		strings.Contains(strings.ToLower(l.ContactName), term)
}

// Sort orders leads in place by key, ascending unless desc. An empty key
// sorts by assets, largest first. Ties fall back to id ascending.
func Sort(leads []model.Lead, key string, desc bool) {
	var less func(a, b model.Lead) int
	switch key {
	case SortScore:
		less = func(a, b model.Lead) int { return cmp.Compare(a.Score, b.Score) }
	case SortName:
		less = func(a, b model.Lead) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	default:
		less = func(a, b model.Lead) int { return cmp.Compare(a.AssetsUSD, b.AssetsUSD) }
		if key == "" {
			desc = true
		}
	}
	slices.SortStableFunc(leads, func(a, b model.Lead) int {
		c := less(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
