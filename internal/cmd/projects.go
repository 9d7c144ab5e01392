package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long:  "List projects. Filter values accept names as well as ids;\nnon-numeric values are resolved before the request goes out.",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <query>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)

	addResourceFlags(projectsListCmd)
	projectsListCmd.Flags().String("company", "", "Filter by company (name or id)")
	projectsListCmd.Flags().String("status", "", "Filter by status")

	addResourceFlags(projectsShowCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	company, err := cmd.Flags().GetString("company")
	if err != nil {
		return err
	}
	status, err := cmd.Flags().GetString("status")
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

	params := filterParams(resolved)
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		params.Set("filter[status]", trimmed)
	}

	projects, err := sess.client.ListProjects(ctx, params)
	if err != nil {
		return err
	}

	return renderDocument(format, output.Projects(projects), meta)
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	query := strings.TrimSpace(args[0])

	id, err := sess.res.ResolveFilterValue(ctx, query, core.ResourceProject)
	if err != nil {
		return err
	}

	project, err := sess.client.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %q not found", query)
	}

	return renderDocument(format, output.Projects([]api.Project{*project}), nil)
}
