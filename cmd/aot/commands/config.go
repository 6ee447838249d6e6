package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/internal/output"
)

var configColumns = []string{"hostname", "output", "verbose", "timeout", "retry-max"}

// Config represents the CLI configuration file.
type Config struct {
	Hostname string `json:"hostname"  yaml:"hostname,omitempty"`
	Output   string `json:"output"    yaml:"output,omitempty"`
	Verbose  bool   `json:"verbose"   yaml:"verbose"`
	Timeout  string `json:"timeout"   yaml:"timeout,omitempty"`
	RetryMax int    `json:"retry-max" yaml:"retry-max"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the aot CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRenderer(cmd, configColumns, "").Render(loadConfig())
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of hostname, output, verbose, timeout or retry-max in the configuration file",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return newRenderer(cmd, []string{"key", "value"}, "").Render(map[string]string{
				"key":   key,
				"value": value,
			})
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Long:  "Print the path of the configuration file used by the CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err
		},
	}
}

func loadConfig() *Config {
	config := &Config{
		Hostname: viper.GetString("hostname"),
		Output:   viper.GetString("output"),
		Verbose:  viper.GetBool("verbose"),
		RetryMax: viper.GetInt("retry-max"),
	}

	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		config.Timeout = timeout.String()
	}

	return config
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "hostname":
		config.Hostname = value
	case "output":
		format := value
		if format != constants.FormatAuto {
			resolved, err := output.ResolveFormat(value, nil)
			if err != nil {
				return err
			}

			format = resolved
		}

		config.Output = format
	case "verbose":
		verbose, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for verbose: %w", err)
		}

		config.Verbose = verbose
	case "timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid value for timeout: %w", err)
		}

		config.Timeout = timeout.String()
	case "retry-max":
		retryMax, err := strconv.Atoi(value)
		if err != nil || retryMax < 0 {
			return fmt.Errorf("invalid value for retry-max: %q", value)
		}

		config.RetryMax = retryMax
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

// configFilePath returns the file in use, or the default location.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

func saveConfig(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
