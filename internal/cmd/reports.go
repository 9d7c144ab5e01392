package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/output"
)

var reportGroups = []string{"person", "project", "service"}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Summarize logged time",
}

var reportsTimeCmd = &cobra.Command{
	Use:   "time",
	Short: "Grouped time totals",
	Long: `Total and billable time, grouped by person, project, or service.

Report queries count against the slowest upstream rate class, so prefer
narrow date ranges when polling.

Examples:
  worklane reports time --from 2026-08-01 --to 2026-08-31
  worklane reports time --project "Website Redesign" --group service`,
	Args: cobra.NoArgs,
	RunE: runReportsTime,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsTimeCmd)

	addResourceFlags(reportsTimeCmd)
	reportsTimeCmd.Flags().String("project", "", "Filter by project (name, number, or id)")
	reportsTimeCmd.Flags().String("person", "", "Filter by person (name, email, or id)")
	reportsTimeCmd.Flags().String("from", "", "Only entries on or after this date (YYYY-MM-DD)")
	reportsTimeCmd.Flags().String("to", "", "Only entries on or before this date (YYYY-MM-DD)")
	reportsTimeCmd.Flags().String("group", "person", "Group totals by: person, project, service")
}

func runReportsTime(cmd *cobra.Command, args []string) error {
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
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	group, err := cmd.Flags().GetString("group")
	if err != nil {
		return err
	}
	group = strings.TrimSpace(group)
	if !validReportGroup(group) {
		return fmt.Errorf("invalid group %q (want one of %s)", group, strings.Join(reportGroups, ", "))
	}

	for _, date := range []string{from, to} {
		if strings.TrimSpace(date) == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, strings.TrimSpace(date)); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
		}
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
	params.Set("group_by", group)
	if trimmed := strings.TrimSpace(from); trimmed != "" {
		params.Set("filter[after]", trimmed)
	}
	if trimmed := strings.TrimSpace(to); trimmed != "" {
		params.Set("filter[before]", trimmed)
	}

	rows, err := sess.client.TimeReport(ctx, params)
	if err != nil {
		return err
	}

	return renderDocument(format, output.TimeReport(rows), meta)
}

func validReportGroup(group string) bool {
	for _, candidate := range reportGroups {
		if group == candidate {
			return true
		}
	}
	return false
}
