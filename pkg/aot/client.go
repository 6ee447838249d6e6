package aot

import (
	"context"
	"net/http"
	"time"
)

// ProjectsClient provides access to /projects.
type ProjectsClient interface {
	ListProjects(ctx context.Context, filters *FilterSet) (*Envelope, error)
	GetProjectDetails(ctx context.Context, slug string, filters *FilterSet) (*Envelope, error)
}

// NodesClient provides access to /nodes.
type NodesClient interface {
	ListNodes(ctx context.Context, filters *FilterSet) (*Envelope, error)
	GetNodeDetails(ctx context.Context, vsn string, filters *FilterSet) (*Envelope, error)
}

// SensorsClient provides access to /sensors.
type SensorsClient interface {
	ListSensors(ctx context.Context, filters *FilterSet) (*Envelope, error)
	GetSensorDetails(ctx context.Context, path string, filters *FilterSet) (*Envelope, error)
}

// ObservationsClient provides access to /observations and /raw-observations.
type ObservationsClient interface {
	ListObservations(ctx context.Context, filters *FilterSet) (*Envelope, error)
	ListRawObservations(ctx context.Context, filters *FilterSet) (*Envelope, error)
}

// PageFollower fetches the page referenced by an envelope's next link.
type PageFollower interface {
	// GetNextPage returns nil, nil when env carries no next link.
	GetNextPage(ctx context.Context, env *Envelope) (*Envelope, error)
}

// Client is the full Array of Things API client.
type Client interface {
	ProjectsClient
	NodesClient
	SensorsClient
	ObservationsClient
	PageFollower

	// Hostname returns the normalized API base URL.
	Hostname() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// The zero value of every optional field keeps the default contract: one
// attempt per request, no client side timeout and no logging.
type Config struct {
	// Hostname is the API base URL including the base path, e.g.
	// "https://api.arrayofthings.org/api". aotclient.New trims a trailing slash
	// and adds "https://" when no scheme is present.
	Hostname string

	// HTTPTimeout bounds every request. Zero means no timeout; prefer context
	// deadlines for per call limits.
	HTTPTimeout time.Duration
	// RetryMax enables retries on 429/5xx and connection errors when > 0.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug logs every request and response when a Logger is set.
	Debug bool
	// Logger receives transport logs.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPClient replaces the underlying *http.Client, mostly for tests. A
	// non-zero HTTPTimeout overrides its Timeout on an internal copy.
	HTTPClient *http.Client
	// Interceptors run around every request, after the built in debug logging.
	Interceptors *InterceptorChain
}
