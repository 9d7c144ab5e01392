package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/output"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Browse services",
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services of a project",
	Long:  "List the services attached to a project. Services only exist\nwithin a project or deal, so --project is required.",
	Args:  cobra.NoArgs,
	RunE:  runServicesList,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.AddCommand(servicesListCmd)

	addResourceFlags(servicesListCmd)
	servicesListCmd.Flags().String("project", "", "Project scope (name, number, or id)")
}

func runServicesList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	if strings.TrimSpace(project) == "" {
		return errors.New("--project is required")
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	resolved, meta := sess.res.ResolveFilterIds(ctx,
		map[string]string{"project_id": strings.TrimSpace(project)},
		map[string]core.ResourceType{"project_id": core.ResourceProject},
	)

	services, err := sess.client.ListServices(ctx, filterParams(resolved))
	if err != nil {
		return err
	}

	return renderDocument(format, output.Services(services), meta)
}
