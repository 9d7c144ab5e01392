package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/output"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Browse people",
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people",
	Args:  cobra.NoArgs,
	RunE:  runPeopleList,
}

var peopleShowCmd = &cobra.Command{
	Use:   "show <query>",
	Short: "Show one person",
	Long:  "Show one person. The query may be an id, an email address, or a name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleShow,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleListCmd)
	peopleCmd.AddCommand(peopleShowCmd)

	addResourceFlags(peopleListCmd)
	peopleListCmd.Flags().String("company", "", "Filter by company (name or id)")
	peopleListCmd.Flags().String("project", "", "Filter by project (name, number, or id)")

	addResourceFlags(peopleShowCmd)
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	company, err := cmd.Flags().GetString("company")
	if err != nil {
		return err
	}
	project, err := cmd.Flags().GetString("project")
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
	if trimmed := strings.TrimSpace(project); trimmed != "" {
		filters["project_id"] = trimmed
	}
	resolved, meta := sess.res.ResolveFilterIds(ctx, filters, map[string]core.ResourceType{
		"company_id": core.ResourceCompany,
		"project_id": core.ResourceProject,
	})

	people, err := sess.client.ListPeople(ctx, filterParams(resolved))
	if err != nil {
		return err
	}

	return renderDocument(format, output.People(people), meta)
}

func runPeopleShow(cmd *cobra.Command, args []string) error {
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

	id, err := sess.res.ResolveFilterValue(ctx, query, core.ResourcePerson)
	if err != nil {
		return err
	}

	person, err := sess.client.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if person == nil {
		return fmt.Errorf("person %q not found", query)
	}

	return renderDocument(format, output.People([]api.Person{*person}), nil)
}
