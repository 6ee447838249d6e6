package aotclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/aot/internal/client"
	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

// New creates a new API client. A nil config uses the public endpoint with
// default settings. The caller's config is not modified.
func New(config *aot.Config) (aot.Client, error) {
	cfg := aot.Config{}
	if config != nil {
		cfg = *config
	}

	cfg.Hostname = NormalizeHostname(cfg.Hostname)

	c, err := client.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithHostname creates a client for the given API base URL.
func NewWithHostname(hostname string) (aot.Client, error) {
	return New(&aot.Config{Hostname: hostname})
}

// NormalizeHostname trims surrounding space and trailing slashes and adds an
// https scheme when none is given. An empty hostname yields the public endpoint.
func NormalizeHostname(hostname string) string {
	hostname = strings.TrimRight(strings.TrimSpace(hostname), "/")
	if hostname == "" {
		return constants.DefaultHostname
	}

	if !strings.HasPrefix(hostname, "http://") && !strings.HasPrefix(hostname, "https://") {
		hostname = "https://" + hostname
	}

	return hostname
}
