package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/output"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Browse tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)

	addResourceFlags(tasksListCmd)
	tasksListCmd.Flags().String("project", "", "Filter by project (name, number, or id)")
	tasksListCmd.Flags().String("person", "", "Filter by assignee (name, email, or id)")
	tasksListCmd.Flags().String("status", "", "Filter by status")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	person, err := cmd.Flags().GetString("person")
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
	if trimmed := strings.TrimSpace(project); trimmed != "" {
		filters["project_id"] = trimmed
	}
	if trimmed := strings.TrimSpace(person); trimmed != "" {
		filters["person_id"] = trimmed
	}
	resolved, meta := sess.res.ResolveFilterIds(ctx, filters, map[string]core.ResourceType{
		"project_id": core.ResourceProject,
		"person_id":  core.ResourcePerson,
	})

	params := filterParams(resolved)
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		params.Set("filter[status]", trimmed)
	}

	tasks, err := sess.client.ListTasks(ctx, params)
	if err != nil {
		return err
	}

	return renderDocument(format, output.Tasks(tasks), meta)
}
