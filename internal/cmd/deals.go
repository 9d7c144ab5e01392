package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/output"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Browse deals",
}

var dealsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deals",
	Args:  cobra.NoArgs,
	RunE:  runDealsList,
}

func init() {
	rootCmd.AddCommand(dealsCmd)
	dealsCmd.AddCommand(dealsListCmd)

	addResourceFlags(dealsListCmd)
	dealsListCmd.Flags().String("company", "", "Filter by company (name or id)")
}

func runDealsList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	company, err := cmd.Flags().GetString("company")
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	filters := map[string]string{}
	if trimmed := strings.TrimSpace(company); trimmed != "" {
		filters["company_id"] = trimmed
	}
	resolved, meta := sess.res.ResolveFilterIds(ctx, filters, map[string]core.ResourceType{
		"company_id": core.ResourceCompany,
	})

	deals, err := sess.client.ListDeals(ctx, filterParams(resolved))
	if err != nil {
		return err
	}

	return renderDocument(format, output.Deals(deals), meta)
}
