package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/export"
	"github.com/sells-group/leads-cli/internal/query"
)

var (
	exportSearch searchFlags
	exportList   listFlags
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching leads to an Excel workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts, err := exportList.options(exportSearch.state)
		if err != nil {
			return err
		}

		env, err := initLeads(ctx, config.ModeExport, openClientStore)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Resolver.Load(ctx, exportSearch.criteria())
		if err != nil {
			return err
		}
		leads := query.Filter(res.Leads, opts)
		query.Sort(leads, opts.SortBy, opts.Desc)

		if err := export.WriteFile(exportOut, leads); err != nil {
			return eris.Wrap(err, "export")
		}
		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("leads", len(leads)),
			zap.String("run_id", res.RunID),
		)
		return nil
	},
}

func init() {
	exportSearch.bind(exportCmd)
	exportList.bind(exportCmd, false)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "leads.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}
