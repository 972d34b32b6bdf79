package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/assistant"
	"github.com/sells-group/leads-cli/internal/config"
	anthropicpkg "github.com/sells-group/leads-cli/pkg/anthropic"
)

var (
	briefSearch   searchFlags
	briefQuestion string
)

var briefCmd = &cobra.Command{
	Use:   "brief <institution-id>",
	Short: "Ask the assistant about one lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initLeads(ctx, config.ModeBrief, openClientStore)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Resolver.Load(ctx, briefSearch.criteria())
		if err != nil {
			return err
		}
		lead, ok := res.Lead(args[0])
		if !ok {
			return eris.Errorf("brief: no lead %q in the current results", args[0])
		}

		a := assistant.New(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		reply, err := a.Ask(ctx, lead, nil, briefQuestion)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	briefSearch.bind(briefCmd)
	briefCmd.Flags().StringVarP(&briefQuestion, "question", "q", assistant.DefaultQuestion, "question to ask")
	rootCmd.AddCommand(briefCmd)
}
