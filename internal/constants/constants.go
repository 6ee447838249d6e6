package constants

import "time"

// API defaults.
const (
	// DefaultHostname is the public Array of Things API base URL.
	DefaultHostname = "https://api.arrayofthings.org/api"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "aot-go-client"
)

// Resource endpoints.
const (
	ProjectsPath        = "/projects"
	NodesPath           = "/nodes"
	SensorsPath         = "/sensors"
	ObservationsPath    = "/observations"
	RawObservationsPath = "/raw-observations"
)

// CLI configuration.
const (
	// ConfigDirName is the configuration directory under the user's home.
	ConfigDirName = ".aot"

	// ConfigFileName is the configuration file inside ConfigDirName.
	ConfigFileName = "config.yml"

	// EnvPrefix prefixes environment variable overrides, e.g. AOT_HOSTNAME.
	EnvPrefix = "AOT"

	// MinimumArgumentCount is the number of arguments for KEY VALUE commands.
	MinimumArgumentCount = 2
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the CLI request timeout. Library clients have none
	// unless configured.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry defaults, applied only when retries are enabled.
const (
	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination and display limits.
const (
	// DefaultPageSize is the CLI's default "size" filter.
	DefaultPageSize = 200

	// DefaultMaxPages bounds --all walks in the CLI.
	DefaultMaxPages = 50

	// TimestampLayout is used in table output.
	TimestampLayout = "2006-01-02 15:04:05"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

// Format constants.
const (
	// FormatAuto picks table on a terminal, JSON otherwise.
	FormatAuto = "auto"

	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
