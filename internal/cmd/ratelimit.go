package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/core/engine"
	"github.com/worklane/worklane-cli/internal/output"
)

var rateLimitStatusOutput string

var rateLimitCmd = &cobra.Command{
	Use:     "ratelimit",
	Aliases: []string{"rate-limit"},
	Short:   "Inspect API rate limit classes",
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective rate limit configuration",
	Long: `Show the effective rate limit configuration.

Limits come from the documented Worklane quotas merged with any
rate_limits overrides in the config file. The in-window column reflects
this process only; a running server reports live counts on
/v1/ratelimit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitStatusOutput)
		if err != nil {
			return err
		}

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}

		limiter := engine.NewLimiter(classOverrides(cfg))
		rendered, err := output.Render(format, output.RateLimits(limiter.Snapshot()))
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
	rateLimitCmd.AddCommand(rateLimitStatusCmd)

	rateLimitStatusCmd.Flags().StringVar(&rateLimitStatusOutput, "output", string(output.FormatTable), "Output format: table, json, markdown")
}
