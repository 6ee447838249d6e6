package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/internal/output"
	"github.com/fivetwenty-io/aot/pkg/aot"
	"github.com/fivetwenty-io/aot/pkg/aotclient"
)

// apiSession bundles a client with the logger and metrics it reports to.
type apiSession struct {
	client  aot.Client
	logger  aot.Logger
	metrics *aot.MetricsCollector
}

// newSession builds an API client from the viper configuration.
func newSession(cmd *cobra.Command) (*apiSession, error) {
	verbose := viper.GetBool("verbose")
	logger := NewLogger(cmd.ErrOrStderr(), verbose)
	metrics := aot.NewMetricsCollector()

	metrics.SetOnChange(func(endpoint string, m *aot.Metrics) {
		logger.Debug("Request recorded", map[string]interface{}{
			"endpoint": endpoint,
			"requests": m.TotalRequests,
		})
	})

	headers, err := parseHeaders(viper.GetStringSlice("header"))
	if err != nil {
		return nil, err
	}

	chain := aot.NewInterceptorChain()
	if len(headers) > 0 {
		chain.AddRequestInterceptor(aot.HeaderInterceptor(headers))
	}

	chain.AddRequestInterceptor(aot.MetricsRequestInterceptor(metrics))
	chain.AddResponseInterceptor(aot.MetricsResponseInterceptor(metrics))

	client, err := aotclient.New(&aot.Config{
		Hostname:     viper.GetString("hostname"),
		HTTPTimeout:  viper.GetDuration("timeout"),
		RetryMax:     viper.GetInt("retry-max"),
		Debug:        verbose,
		Logger:       logger,
		Interceptors: chain,
	})
	if err != nil {
		return nil, err
	}

	return &apiSession{client: client, logger: logger, metrics: metrics}, nil
}

// parseHeaders turns "Name: value" entries into a header map.
func parseHeaders(entries []string) (map[string]string, error) {
	headers := make(map[string]string, len(entries))

	for _, entry := range entries {
		name, value, found := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)

		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, entry)
		}

		headers[name] = strings.TrimSpace(value)
	}

	return headers, nil
}

// logMetrics reports per endpoint request statistics at debug level.
func (s *apiSession) logMetrics() {
	endpoints := s.metrics.Endpoints()
	sort.Strings(endpoints)

	for _, endpoint := range endpoints {
		m := s.metrics.GetMetrics(endpoint)
		if m == nil {
			continue
		}

		s.logger.Debug("Request summary", map[string]interface{}{
			"endpoint": endpoint,
			"requests": m.TotalRequests,
			"errors":   m.TotalErrors,
			"avg_ms":   m.AverageLatency.Milliseconds(),
		})
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// filterOptions holds the filter flags shared by list and get commands.
type filterOptions struct {
	filters   []string
	overrides []string
	jsonPath  string
}

func (o *filterOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.filters, "filter", "f", nil,
		"filter as key:op:value, repeatable; filters on the same key are combined")
	cmd.Flags().StringArrayVar(&o.overrides, "override", nil,
		"filter as key:op:value that replaces every earlier filter on its key")
	cmd.Flags().StringVar(&o.jsonPath, "jsonpath", "", "JSONPath expression applied to the response")
}

// apply merges the --filter flags into base with And and then the --override
// flags with Or.
func (o *filterOptions) apply(base *aot.FilterSet) (*aot.FilterSet, error) {
	for _, expr := range o.filters {
		f, err := aot.ParseFilter(expr)
		if err != nil {
			return nil, err
		}

		base.And(f)
	}

	for _, expr := range o.overrides {
		f, err := aot.ParseFilter(expr)
		if err != nil {
			return nil, err
		}

		base.Or(f)
	}

	return base, nil
}

// listOptions adds paging to filterOptions.
type listOptions struct {
	filterOptions

	size     int
	order    string
	all      bool
	maxPages int
}

func (o *listOptions) addFlags(cmd *cobra.Command) {
	o.filterOptions.addFlags(cmd)
	cmd.Flags().IntVar(&o.size, "size", constants.DefaultPageSize, "results per page (0 for the API default)")
	cmd.Flags().StringVar(&o.order, "order", "", "sort order as direction:field, e.g. desc:timestamp")
	cmd.Flags().BoolVar(&o.all, "all", false, "follow next links and combine every page")
	cmd.Flags().IntVar(&o.maxPages, "max-pages", constants.DefaultMaxPages, "page limit for --all (0 for no limit)")
}

func (o *listOptions) filterSet() (*aot.FilterSet, error) {
	base := aot.NewFilterSet()

	if o.size > 0 {
		base.And(aot.Size(o.size))
	}

	if o.order != "" {
		order, err := aot.ParseFilter("order:" + o.order)
		if err != nil {
			return nil, err
		}

		base.And(order)
	}

	return o.apply(base)
}

type listFunc func(ctx context.Context, client aot.Client, filters *aot.FilterSet) (*aot.Envelope, error)

type getFunc func(ctx context.Context, client aot.Client, id string, filters *aot.FilterSet) (*aot.Envelope, error)

func newRenderer(cmd *cobra.Command, columns []string, jsonPath string) *output.Renderer {
	return &output.Renderer{
		Out:      cmd.OutOrStdout(),
		Format:   viper.GetString("output"),
		JSONPath: jsonPath,
		Columns:  columns,
	}
}

func runList(cmd *cobra.Command, opts *listOptions, resource string, columns []string, list listFunc) error {
	filters, err := opts.filterSet()
	if err != nil {
		return err
	}

	session, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer session.logMetrics()

	ctx := commandContext(cmd)

	first, err := list(ctx, session.client, filters)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", resource, err)
	}

	result := first

	if opts.all {
		result, err = collectPages(ctx, session, first, opts.maxPages)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", resource, err)
		}
	}

	return newRenderer(cmd, columns, opts.jsonPath).Render(result)
}

// collectPages follows next links from first and returns one envelope holding
// every item. Hitting the page limit is reported as a warning.
func collectPages(ctx context.Context, session *apiSession, first *aot.Envelope, maxPages int) (*aot.Envelope, error) {
	var items []json.RawMessage

	it := aot.NewPageIterator(ctx, session.client, first, aot.WithMaxPages(maxPages))
	for it.Next() {
		page, err := aot.DecodeList[json.RawMessage](it.Page())
		if err != nil {
			return nil, err
		}

		items = append(items, page...)
	}

	err := it.Err()

	switch {
	case errors.Is(err, aot.ErrMaxPagesReached):
		session.logger.Warn("Stopped before the last page", map[string]interface{}{
			"pages": it.Pages(),
			"next":  it.Page().Next(),
		})
	case err != nil:
		return nil, err
	}

	if items == nil {
		items = []json.RawMessage{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding combined pages: %w", err)
	}

	return &aot.Envelope{Data: data}, nil
}

func runGet(cmd *cobra.Command, opts *filterOptions, resource, id string, columns []string, get getFunc) error {
	filters, err := opts.apply(aot.NewFilterSet())
	if err != nil {
		return err
	}

	if filters.IsEmpty() {
		filters = nil
	}

	session, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer session.logMetrics()

	env, err := get(commandContext(cmd), session.client, id, filters)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", resource, err)
	}

	return newRenderer(cmd, columns, opts.jsonPath).Render(env)
}
