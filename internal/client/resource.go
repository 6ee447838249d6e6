package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/aot/internal/http"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

// ResourceClient provides list and detail access to one API collection.
type ResourceClient struct {
	httpClient   *http.Client
	resourcePath string
	resourceName string
}

// NewResourceClient creates a client for the collection at resourcePath.
func NewResourceClient(httpClient *http.Client, resourcePath, resourceName string) *ResourceClient {
	return &ResourceClient{
		httpClient:   httpClient,
		resourcePath: resourcePath,
		resourceName: resourceName,
	}
}

// Path returns the collection path.
func (c *ResourceClient) Path() string {
	return c.resourcePath
}

// List retrieves one page of the collection.
func (c *ResourceClient) List(ctx context.Context, filters *aot.FilterSet) (*aot.Envelope, error) {
	env, err := sendRequest(ctx, c.httpClient, c.resourcePath, filters)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.resourceName, err)
	}

	return env, nil
}

// Get retrieves a single resource by its identifier.
func (c *ResourceClient) Get(ctx context.Context, id string, filters *aot.FilterSet) (*aot.Envelope, error) {
	if id == "" {
		return nil, fmt.Errorf("getting %s: %w", c.resourceName, aot.ErrEmptyResourceName)
	}

	path := c.resourcePath + "/" + url.PathEscape(id)

	env, err := sendRequest(ctx, c.httpClient, path, filters)
	if err != nil {
		return nil, fmt.Errorf("getting %s %q: %w", c.resourceName, id, err)
	}

	return env, nil
}

// sendRequest issues a GET for target (path or absolute URL) and decodes the
// envelope. A non-2xx status fails before the body is decoded.
func sendRequest(ctx context.Context, httpClient *http.Client, target string, filters *aot.FilterSet) (*aot.Envelope, error) {
	resp, err := httpClient.Get(ctx, target, filters)
	if err != nil {
		return nil, err
	}

	var env aot.Envelope

	err = json.Unmarshal(resp.Body, &env)
	if err != nil {
		return nil, &aot.DecodeError{URL: resp.URL, Err: err}
	}

	return &env, nil
}
