package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

var projectColumns = []string{"slug", "name", "first_observation", "latest_observation"}

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Browse projects",
		Long:    "List Array of Things projects and show project details",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List projects, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, "projects", projectColumns,
				func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.ListProjects(ctx, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "get SLUG",
		Short: "Get project details",
		Long:  "Display detailed information about a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, "project", args[0], nil,
				func(ctx context.Context, client aot.Client, slug string, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.GetProjectDetails(ctx, slug, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}
