package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

var sensorColumns = []string{"path", "uom", "min", "max"}

// NewSensorsCommand creates the sensors command group.
func NewSensorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sensors",
		Aliases: []string{"sensor"},
		Short:   "Browse sensors",
		Long:    "List sensors and show sensor details",
	}

	cmd.AddCommand(newSensorsListCommand())
	cmd.AddCommand(newSensorsGetCommand())

	return cmd
}

func newSensorsListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sensors",
		Long:  "List sensors, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, "sensors", sensorColumns,
				func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.ListSensors(ctx, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func newSensorsGetCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Get sensor details",
		Long:  "Display detailed information about a sensor, e.g. metsense.bmp180.temperature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, "sensor", args[0], nil,
				func(ctx context.Context, client aot.Client, path string, filters *aot.FilterSet) (*aot.Envelope, error) {
					return client.GetSensorDetails(ctx, path, filters)
				})
		},
	}

	opts.addFlags(cmd)

	return cmd
}
