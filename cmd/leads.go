package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/query"
	"github.com/sells-group/leads-cli/internal/resolve"
)

var (
	leadsSearch searchFlags
	leadsList   listFlags
	leadsJSON   bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Resolve, score and list institution leads",
	Long:  "Queries every source through its fallback tiers, merges the results with saved overrides and prints one page of leads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts, err := leadsList.options(leadsSearch.state)
		if err != nil {
			return err
		}

		env, err := initLeads(ctx, config.ModeLeads, openClientStore)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Resolver.Load(ctx, leadsSearch.criteria())
		if err != nil {
			return err
		}
		page := query.Apply(res.Leads, opts)

		out := cmd.OutOrStdout()
		if leadsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		}
		formatLeads(out, page)
		formatSources(cmd.ErrOrStderr(), res.Sources)
		return nil
	},
}

func formatLeads(out io.Writer, page query.Page) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATE\tKIND\tASSETS\tSCORE\tSTATUS\tPRODUCTS")
	for _, l := range page.Leads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, truncate(l.Name, 36), l.State, l.Kind, formatAssets(l.AssetsUSD),
			l.Score, l.Status, strings.Join(l.RecommendedProducts, ", "))
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nPage %d of %d (%d leads)\n", page.Page, max(page.Pages, 1), page.Total)
}

func formatSources(out io.Writer, reports []resolve.SourceReport) {
	for _, r := range reports {
		line := fmt.Sprintf("%s: %d records from %s", r.Source, r.Records, r.Tier)
		if r.Degraded {
			tiers := make([]string, 0, len(r.Attempts))
			for _, a := range r.Attempts {
				tiers = append(tiers, a.Tier+"="+a.Outcome)
			}
			line += " (degraded: " + strings.Join(tiers, " ") + ")"
		}
		if r.Dropped > 0 {
			line += fmt.Sprintf(", %d dropped", r.Dropped)
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

// formatAssets renders dollars as $1.2B / $350.0M / $900K.
func formatAssets(usd int64) string {
	switch {
	case usd >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", float64(usd)/1e9)
	case usd >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(usd)/1e6)
	default:
		return fmt.Sprintf("$%dK", usd/1000)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	leadsSearch.bind(leadsCmd)
	leadsList.bind(leadsCmd, true)
	leadsCmd.Flags().BoolVar(&leadsJSON, "json", false, "print the page as JSON")
	rootCmd.AddCommand(leadsCmd)
}
