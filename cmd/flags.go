package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/query"
)

// searchFlags are the upstream search criteria shared by lead commands.
type searchFlags struct {
	state     string
	name      string
	minAssets int64
	maxAssets int64
	limit     int
}

func (f *searchFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.state, "state", "", "two-letter state code")
	fs.StringVar(&f.name, "name", "", "institution name fragment")
	fs.Int64Var(&f.minAssets, "min-assets", 0, "minimum total assets in dollars")
	fs.Int64Var(&f.maxAssets, "max-assets", 0, "maximum total assets in dollars")
	fs.IntVar(&f.limit, "limit", 0, "records per source (default from config)")
}

func (f *searchFlags) criteria() model.Criteria {
	return criteriaFromFlags(f.state, f.name, f.minAssets, f.maxAssets, f.limit)
}

// listFlags select and order resolved leads.
type listFlags struct {
	kind     string
	status   string
	minScore int
	search   string
	sortBy   string
	desc     bool
	page     int
	pageSize int
}

func (f *listFlags) bind(cmd *cobra.Command, paged bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.kind, "kind", "", "credit_union or community_bank")
	fs.StringVar(&f.status, "status", "", "lead status filter")
	fs.IntVar(&f.minScore, "min-score", 0, "minimum opportunity score")
	fs.StringVar(&f.search, "search", "", "text match on name, city or contact")
	fs.StringVar(&f.sortBy, "sort", "", "sort key: assets, score or name")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
	if paged {
		fs.IntVar(&f.page, "page", 1, "page number")
		fs.IntVar(&f.pageSize, "page-size", query.DefaultPageSize, "leads per page")
	}
}

func (f *listFlags) options(state string) (query.Options, error) {
	opts := query.Options{
		State:    state,
		Kind:     model.Kind(f.kind),
		Status:   model.LeadStatus(f.status),
		MinScore: f.minScore,
		Search:   f.search,
		SortBy:   strings.ToLower(f.sortBy),
		Desc:     f.desc,
		Page:     f.page,
		PageSize: f.pageSize,
	}
	return opts, opts.Validate()
}
