package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

var (
	observationColumns    = []string{"node_vsn", "sensor_path", "timestamp", "value", "uom"}
	rawObservationColumns = []string{"node_vsn", "sensor_path", "timestamp", "hrf", "raw"}
)

// NewObservationsCommand creates the observations command group.
func NewObservationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "observations",
		Aliases: []string{"obs"},
		Short:   "Browse observations",
		Long:    "List converted sensor observations",
	}

	cmd.AddCommand(newObservationsListCommand())

	return cmd
}

func newObservationsListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List observations",
		Long: `List observations, optionally filtered.

Filters on the same key are combined, so a time window is two filters:

  aot observations list -f timestamp:ge:2018-04-21T15:00:00 -f timestamp:lt:2018-04-22T02:00:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, "observations", observationColumns,
				func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.ListObservations(ctx, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}

// NewRawObservationsCommand creates the raw-observations command group.
func NewRawObservationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "raw-observations",
		Aliases: []string{"raw"},
		Short:   "Browse raw observations",
		Long:    "List observations with both raw and converted values",
	}

	cmd.AddCommand(newRawObservationsListCommand())

	return cmd
}

func newRawObservationsListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List raw observations",
		Long:  "List raw observations, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, "raw observations", rawObservationColumns,
				func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.ListRawObservations(ctx, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}
