package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/aot/cmd/aot/commands"
	"github.com/fivetwenty-io/aot/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aot",
	Short: "Array of Things API CLI",
	Long: `A command-line interface for the Array of Things REST API.

Browse projects, nodes and sensors and query observations with composable
filters, for example:

  aot observations list -f value:lt:42 -f node_vsn:004 --order desc:timestamp`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.aot/config.yml)")
	rootCmd.PersistentFlags().String("hostname", constants.DefaultHostname, "API base URL")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatAuto, "output format (auto, table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().Int("retry-max", 0, "retries for 429 and 5xx responses")
	rootCmd.PersistentFlags().StringArray("header", nil, "extra request header as \"Name: value\", repeatable")

	// Bind flags to viper
	for _, name := range []string{"config", "hostname", "output", "verbose", "timeout", "retry-max", "header"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewProjectsCommand())
	rootCmd.AddCommand(commands.NewNodesCommand())
	rootCmd.AddCommand(commands.NewSensorsCommand())
	rootCmd.AddCommand(commands.NewObservationsCommand())
	rootCmd.AddCommand(commands.NewRawObservationsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.aot/config.yml
		viper.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// AOT_HOSTNAME, AOT_RETRY_MAX, ...
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
