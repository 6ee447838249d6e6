package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

var nodeColumns = []string{"vsn", "address", "description", "commissioned_on", "decommissioned_on"}

// NewNodesCommand creates the nodes command group.
func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node"},
		Short:   "Browse nodes",
		Long:    "List sensor nodes and show node details",
	}

	cmd.AddCommand(newNodesListCommand())
	cmd.AddCommand(newNodesGetCommand())

	return cmd
}

func newNodesListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Long:  "List nodes, optionally filtered by project, location or other fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, "nodes", nodeColumns,
				func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.ListNodes(ctx, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func newNodesGetCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "get VSN",
		Short: "Get node details",
		Long:  "Display detailed information about a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, "node", args[0], nil,
				func(ctx context.Context, client aot.Client, vsn string, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.GetNodeDetails(ctx, vsn, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}
