package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
)

var overrideCmd = &cobra.Command{
	Use:   "override <institution-id>",
	Short: "Set user-entered fields on a lead",
	Long:  "Writes the given fields for one institution id (e.g. ncua_5536). Fields not passed are left unchanged. With no field flags the saved override is printed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		env, err := initLeads(ctx, config.ModeOverride, openClientStore)
		if err != nil {
			return err
		}
		defer env.Close()

		if patch.IsEmpty() {
			saved, _, err := env.Store.Get(ctx, id)
			if err != nil {
				return eris.Wrap(err, "override show")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(saved)
		}

		if err := env.Resolver.UpdateOverride(ctx, id, patch); err != nil {
			return err
		}
		zap.L().Info("override saved", zap.String("id", id))
		return nil
	},
}

// patchFromFlags collects only the flags the user set.
func patchFromFlags(cmd *cobra.Command) (model.Override, error) {
	fs := cmd.Flags()
	var patch model.Override

	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}
	patch.ContactName = str("contact-name")
	patch.ContactEmail = str("contact-email")
	patch.ContactPhone = str("contact-phone")
	patch.Notes = str("notes")
	patch.LastContactDate = str("last-contact")
	if s := str("status"); s != nil {
		status := model.LeadStatus(*s)
		patch.Status = &status
	}
	if fs.Changed("score") {
		v, _ := fs.GetInt("score")
		patch.ScoreOverride = &v
	}
	return patch, patch.Validate()
}

func init() {
	fs := overrideCmd.Flags()
	fs.String("contact-name", "", "contact name")
	fs.String("contact-email", "", "contact email")
	fs.String("contact-phone", "", "contact phone")
	fs.String("status", "", "lead status (new, contacted, qualified, proposal, won, lost)")
	fs.String("notes", "", "free-form notes")
	fs.String("last-contact", "", "last contact date (YYYY-MM-DD)")
	fs.Int("score", 0, "score override, 0-100")
	rootCmd.AddCommand(overrideCmd)
}
