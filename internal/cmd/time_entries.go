package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/core/resolver"
	"github.com/worklane/worklane-cli/internal/observability"
	"github.com/worklane/worklane-cli/internal/output"
)

const dateLayout = "2006-01-02"

var timeEntriesCmd = &cobra.Command{
	Use:     "time-entries",
	Aliases: []string{"time"},
	Short:   "Browse and log time entries",
}

var timeEntriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Args:  cobra.NoArgs,
	RunE:  runTimeEntriesList,
}

var timeEntriesLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a time entry",
	Long: `Log a time entry against a service.

Person and service accept names as well as ids. Resolving a service by
name needs --project, since services only exist within a project.

Examples:
  worklane time-entries log --duration 1h30m --person bob@example.com --service 900100
  worklane time-entries log --duration 45m --project PRJ-8841 --service "Design" --note "kickoff prep"`,
	Args: cobra.NoArgs,
	RunE: runTimeEntriesLog,
}

func init() {
	rootCmd.AddCommand(timeEntriesCmd)
	timeEntriesCmd.AddCommand(timeEntriesListCmd)
	timeEntriesCmd.AddCommand(timeEntriesLogCmd)

	addResourceFlags(timeEntriesListCmd)
	timeEntriesListCmd.Flags().String("project", "", "Filter by project (name, number, or id)")
	timeEntriesListCmd.Flags().String("person", "", "Filter by person (name, email, or id)")
	timeEntriesListCmd.Flags().String("service", "", "Filter by service id")
	timeEntriesListCmd.Flags().String("from", "", "Only entries on or after this date (YYYY-MM-DD)")
	timeEntriesListCmd.Flags().String("to", "", "Only entries on or before this date (YYYY-MM-DD)")

	timeEntriesLogCmd.Flags().String("output", "table", "Output format: table, json, markdown")
	timeEntriesLogCmd.Flags().String("date", "", "Entry date (YYYY-MM-DD, default today)")
	timeEntriesLogCmd.Flags().String("duration", "", "Time spent, e.g. 45m or 1h30m")
	timeEntriesLogCmd.Flags().String("note", "", "Entry note")
	timeEntriesLogCmd.Flags().String("person", "", "Person (name, email, or id)")
	timeEntriesLogCmd.Flags().String("service", "", "Service (name or id)")
	timeEntriesLogCmd.Flags().String("project", "", "Project scope for resolving the service by name")
	timeEntriesLogCmd.Flags().String("task", "", "Task id")
}

func runTimeEntriesList(cmd *cobra.Command, args []string) error {
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
	service, err := cmd.Flags().GetString("service")
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
	if trimmed := strings.TrimSpace(service); trimmed != "" {
		filters["service_id"] = trimmed
	}
	resolved, meta := sess.res.ResolveFilterIds(ctx, filters, map[string]core.ResourceType{
		"project_id": core.ResourceProject,
		"person_id":  core.ResourcePerson,
	})

	params := filterParams(resolved)
	if trimmed := strings.TrimSpace(from); trimmed != "" {
		params.Set("filter[after]", trimmed)
	}
	if trimmed := strings.TrimSpace(to); trimmed != "" {
		params.Set("filter[before]", trimmed)
	}

	entries, err := sess.client.ListTimeEntries(ctx, params)
	if err != nil {
		return err
	}

	return renderDocument(format, output.TimeEntries(entries), meta)
}

func runTimeEntriesLog(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	date, err := cmd.Flags().GetString("date")
	if err != nil {
		return err
	}
	duration, err := cmd.Flags().GetString("duration")
	if err != nil {
		return err
	}
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return err
	}
	person, err := cmd.Flags().GetString("person")
	if err != nil {
		return err
	}
	service, err := cmd.Flags().GetString("service")
	if err != nil {
		return err
	}
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	task, err := cmd.Flags().GetString("task")
	if err != nil {
		return err
	}

	minutes, err := parseEntryMinutes(duration)
	if err != nil {
		return err
	}

	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}

	if strings.TrimSpace(service) == "" {
		return errors.New("--service is required")
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()

	personID := strings.TrimSpace(person)
	if personID != "" {
		personID, err = sess.res.ResolveFilterValue(ctx, personID, core.ResourcePerson)
		if err != nil {
			return err
		}
	}

	serviceID, err := resolveServiceID(ctx, sess, strings.TrimSpace(service), strings.TrimSpace(project))
	if err != nil {
		return err
	}

	entry, err := sess.client.CreateTimeEntry(ctx, api.NewTimeEntry{
		Date:      date,
		Minutes:   minutes,
		Note:      strings.TrimSpace(note),
		PersonID:  personID,
		ServiceID: serviceID,
		TaskID:    strings.TrimSpace(task),
	})
	if err != nil {
		return err
	}
	if entry == nil {
		return errors.New("time entry was not returned by the API")
	}

	observability.CLILogger.Info("Time entry logged",
		zap.String("id", entry.ID),
		zap.String("date", entry.Date),
		zap.Int("minutes", entry.Minutes))

	return renderDocument(format, output.TimeEntries([]api.TimeEntry{*entry}), nil)
}

// resolveServiceID turns a service reference into an id, resolving names
// within the project scope.
func resolveServiceID(ctx context.Context, sess *session, service, project string) (string, error) {
	if resolver.IsNumericID(service) {
		return service, nil
	}
	if project == "" {
		return "", errors.New("--project is required to resolve a service by name")
	}

	scope, err := sess.res.ResolveFilterValue(ctx, project, core.ResourceProject)
	if err != nil {
		return "", err
	}

	matches, err := sess.res.Resolve(ctx, service, resolver.Options{
		Type:  core.ResourceService,
		Scope: scope,
		First: true,
	})
	if err != nil {
		return "", err
	}
	return matches[0].ID, nil
}

// parseEntryMinutes converts a --duration value to whole minutes. Plain
// integers are read as minutes.
func parseEntryMinutes(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("--duration is required")
	}

	if minutes, err := strconv.Atoi(trimmed); err == nil {
		if minutes <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return minutes, nil
	}

	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (want minutes or 1h30m)", value)
	}
	minutes := int(parsed.Round(time.Minute) / time.Minute)
	if minutes <= 0 {
		return 0, errors.New("duration must be at least one minute")
	}
	return minutes, nil
}
