package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/internal/http"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

// Client implements the aot.Client interface.
type Client struct {
	httpClient *http.Client
	hostname   string
	logger     aot.Logger

	// Resource clients
	projects        *ResourceClient
	nodes           *ResourceClient
	sensors         *ResourceClient
	observations    *ResourceClient
	rawObservations *ResourceClient
}

var _ aot.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *aot.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new API client. The hostname is used as given; see
// aotclient.New for normalization.
func New(config *aot.Config) (*Client, error) {
	if config == nil {
		return nil, aot.ErrConfigRequired
	}

	if config.Hostname == "" {
		return nil, aot.ErrHostnameRequired
	}

	httpClient := http.NewClient(config.Hostname, createHTTPClientOptions(config)...)

	return NewWithHTTPClient(httpClient, config.Logger), nil
}

// NewWithHTTPClient creates a client over an existing transport.
func NewWithHTTPClient(httpClient *http.Client, logger aot.Logger) *Client {
	client := &Client{
		httpClient: httpClient,
		hostname:   httpClient.BaseURL(),
		logger:     logger,
	}

	client.initializeResourceClients()

	return client
}

// Hostname implements aot.Client.Hostname.
func (c *Client) Hostname() string {
	return c.hostname
}

// ListProjects implements aot.ProjectsClient.ListProjects.
func (c *Client) ListProjects(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.projects.List(ctx, filters)
}

// GetProjectDetails implements aot.ProjectsClient.GetProjectDetails.
func (c *Client) GetProjectDetails(ctx context.Context, slug string, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.projects.Get(ctx, slug, filters)
}

// ListNodes implements aot.NodesClient.ListNodes.
func (c *Client) ListNodes(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.nodes.List(ctx, filters)
}

// GetNodeDetails implements aot.NodesClient.GetNodeDetails.
func (c *Client) GetNodeDetails(ctx context.Context, vsn string, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.nodes.Get(ctx, vsn, filters)
}

// ListSensors implements aot.SensorsClient.ListSensors.
func (c *Client) ListSensors(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.sensors.List(ctx, filters)
}

// GetSensorDetails implements aot.SensorsClient.GetSensorDetails.
func (c *Client) GetSensorDetails(ctx context.Context, path string, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.sensors.Get(ctx, path, filters)
}

// ListObservations implements aot.ObservationsClient.ListObservations.
func (c *Client) ListObservations(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.observations.List(ctx, filters)
}

// ListRawObservations implements aot.ObservationsClient.ListRawObservations.
func (c *Client) ListRawObservations(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	return c.rawObservations.List(ctx, filters)
}

// GetNextPage implements aot.PageFollower.GetNextPage. The next link is
// fetched exactly as given, without filters.
func (c *Client) GetNextPage(ctx context.Context, env *aot.Envelope) (*aot.Envelope, error) {
	next := env.Next()
	if next == "" {
		return nil, nil
	}

	if c.logger != nil {
		c.logger.Debug("Following next page", map[string]interface{}{"url": next})
	}

	page, err := sendRequest(ctx, c.httpClient, next, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching next page: %w", err)
	}

	return page, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.projects = NewResourceClient(c.httpClient, constants.ProjectsPath, "projects")
	c.nodes = NewResourceClient(c.httpClient, constants.NodesPath, "nodes")
	c.sensors = NewResourceClient(c.httpClient, constants.SensorsPath, "sensors")
	c.observations = NewResourceClient(c.httpClient, constants.ObservationsPath, "observations")
	c.rawObservations = NewResourceClient(c.httpClient, constants.RawObservationsPath, "raw observations")
}
