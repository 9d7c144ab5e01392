package cmd

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/output"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Browse companies",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	Args:  cobra.NoArgs,
	RunE:  runCompaniesList,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.AddCommand(companiesListCmd)

	addResourceFlags(companiesListCmd)
	companiesListCmd.Flags().String("query", "", "Filter by name substring")
}

func runCompaniesList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	query, err := cmd.Flags().GetString("query")
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	params := url.Values{}
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		params.Set("filter[query]", trimmed)
	}

	companies, err := sess.client.ListCompanies(cmd.Context(), params)
	if err != nil {
		return err
	}

	return renderDocument(format, output.Companies(companies), nil)
}
