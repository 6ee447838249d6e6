package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

func TestResourceCommands(t *testing.T) {
	tests := []struct {
		name        string
		newCommand  func() *cobra.Command
		use         string
		aliases     []string
		subcommands []string
	}{
		{name: "projects", newCommand: NewProjectsCommand, use: "projects", aliases: []string{"project"}, subcommands: []string{"list", "get"}},
		{name: "nodes", newCommand: NewNodesCommand, use: "nodes", aliases: []string{"node"}, subcommands: []string{"list", "get"}},
		{name: "sensors", newCommand: NewSensorsCommand, use: "sensors", aliases: []string{"sensor"}, subcommands: []string{"list", "get"}},
		{name: "observations", newCommand: NewObservationsCommand, use: "observations", aliases: []string{"obs"}, subcommands: []string{"list"}},
		{name: "raw-observations", newCommand: NewRawObservationsCommand, use: "raw-observations", aliases: []string{"raw"}, subcommands: []string{"list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.newCommand()
			assert.Equal(t, tt.use, cmd.Use)
			assert.Equal(t, tt.aliases, cmd.Aliases)
			assert.Len(t, cmd.Commands(), len(tt.subcommands))

			for _, name := range tt.subcommands {
				sub := findSubcommand(cmd, name)
				require.NotNil(t, sub, name)
				assert.NotNil(t, sub.RunE)
				assert.NotNil(t, sub.Flags().Lookup("filter"))
				assert.NotNil(t, sub.Flags().Lookup("override"))
				assert.NotNil(t, sub.Flags().Lookup("jsonpath"))
			}

			list := findSubcommand(cmd, "list")
			for _, flag := range []string{"size", "order", "all", "max-pages"} {
				assert.NotNil(t, list.Flags().Lookup(flag), flag)
			}
		})
	}
}

func TestListOptions_FilterSet(t *testing.T) {
	tests := []struct {
		name     string
		opts     listOptions
		expected string
		wantErr  bool
	}{
		{
			name:     "defaults",
			opts:     listOptions{size: 200},
			expected: "size=200",
		},
		{
			name:     "no size",
			opts:     listOptions{},
			expected: "",
		},
		{
			name:     "order",
			opts:     listOptions{order: "desc:timestamp"},
			expected: "order=desc:timestamp",
		},
		{
			name: "filters on the same key are combined",
			opts: listOptions{filterOptions: filterOptions{filters: []string{
				"timestamp:ge:2018-04-21T15:00:00",
				"timestamp:lt:2018-04-22T02:00:00",
				"value:lt:42",
			}}},
			expected: "timestamp[]=ge:2018-04-21T15:00:00&timestamp[]=lt:2018-04-22T02:00:00&value=lt:42",
		},
		{
			name: "overrides replace",
			opts: listOptions{
				size: 200,
				filterOptions: filterOptions{
					filters:   []string{"timestamp:ge:1", "timestamp:lt:2"},
					overrides: []string{"size:10", "timestamp:eq:3"},
				},
			},
			expected: "size=10&timestamp=eq:3",
		},
		{
			name:    "invalid filter",
			opts:    listOptions{filterOptions: filterOptions{filters: []string{"value"}}},
			wantErr: true,
		},
		{
			name:    "invalid override",
			opts:    listOptions{filterOptions: filterOptions{overrides: []string{":lt:4"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := tt.opts.filterSet()
			if tt.wantErr {
				require.ErrorIs(t, err, aot.ErrInvalidFilter)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, filters.String())
		})
	}
}

func TestProjectsList(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"links":{"next":null}},"data":[{"name":"Chicago","slug":"chicago"},{"name":"Detroit","slug":"detroit"}]}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatJSON,
	})

	out, err := executeCommand(t, NewProjectsCommand(), "list", "--filter", "name:eq:Chicago")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/projects?size=200&name=eq%3AChicago"}, server.Requests())

	var env aot.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.NotNil(t, env.Meta)

	projects, err := aot.DecodeList[aot.Project](&env)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestProjectsGet_Table(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"name":"Chicago","slug":"chicago","first_observation":"2017-08-01T00:00:00Z"}}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatTable,
	})

	out, err := executeCommand(t, NewProjectsCommand(), "get", "chicago")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/projects/chicago"}, server.Requests())
	assert.Contains(t, out, "Chicago")
	assert.Contains(t, out, "First Observation")
	assert.Contains(t, out, "2017-08-01 00:00:00")
}

func TestNodesGet_NotFound(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	useViper(t, map[string]interface{}{"hostname": server.URL + "/api"})

	_, err := executeCommand(t, NewNodesCommand(), "get", "999")
	require.Error(t, err)
	assert.True(t, aot.IsNotFound(err))
	assert.Contains(t, err.Error(), "failed to get node")
}

func TestSensorsGet_JSONPath(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"path":"metsense.bmp180.temperature","uom":"C"}}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatTable,
	})

	out, err := executeCommand(t, NewSensorsCommand(), "get", "metsense.bmp180.temperature", "--jsonpath", "$.data.uom")
	require.NoError(t, err)
	assert.Equal(t, "C\n", out)
}

func pagedObservations(serverURL *string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}

		next := "null"
		if page != "3" {
			n := map[string]string{"1": "2", "2": "3"}[page]
			next = fmt.Sprintf("%q", *serverURL+"/api/observations?page="+n)
		}

		_, _ = fmt.Fprintf(w, `{"meta":{"links":{"next":%s}},"data":[{"node_vsn":"00%s","value":%s}]}`, next, page, page)
	}
}

func TestObservationsList_All(t *testing.T) {
	var serverURL string

	server := newAPIRecorder(t, pagedObservations(&serverURL))
	serverURL = server.URL

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatJSON,
	})

	out, err := executeCommand(t, NewObservationsCommand(), "list", "--all", "--size", "1", "--order", "asc:timestamp")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/observations?size=1&order=asc%3Atimestamp",
		"/api/observations?page=2",
		"/api/observations?page=3",
	}, server.Requests())

	var env aot.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Nil(t, env.Meta)

	observations, err := aot.DecodeList[aot.Observation](&env)
	require.NoError(t, err)
	require.Len(t, observations, 3)
	assert.Equal(t, "003", observations[2].NodeVSN)
}

func TestObservationsList_MaxPages(t *testing.T) {
	var serverURL string

	server := newAPIRecorder(t, pagedObservations(&serverURL))
	serverURL = server.URL

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatJSON,
	})

	out, err := executeCommand(t, NewObservationsCommand(), "list", "--all", "--max-pages", "2", "--jsonpath", "$.data[*].node_vsn")
	require.NoError(t, err)
	assert.Len(t, server.Requests(), 2)

	var vsns []string
	require.NoError(t, json.Unmarshal([]byte(out), &vsns))
	assert.Equal(t, []string{"001", "002"}, vsns)
}

func TestRawObservationsList_Table(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{},"data":[{"node_vsn":"004","sensor_path":"metsense.tsys01.temperature","timestamp":"2018-04-21T15:00:00Z","hrf":21.5,"raw":null}]}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatTable,
	})

	out, err := executeCommand(t, NewRawObservationsCommand(), "list", "--size", "0")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/raw-observations"}, server.Requests())
	assert.Contains(t, out, "metsense.tsys01.temperature")
	assert.Contains(t, out, "21.5")
	assert.Contains(t, out, constants.NotAvailable)
}

func TestList_InvalidFilter(t *testing.T) {
	useViper(t, map[string]interface{}{"hostname": "http://127.0.0.1:1/api"})

	_, err := executeCommand(t, NewNodesCommand(), "list", "--filter", "project")
	require.ErrorIs(t, err, aot.ErrInvalidFilter)
}

func TestList_UnknownOutputFormat(t *testing.T) {
	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   "xml",
	})

	_, err := executeCommand(t, NewSensorsCommand(), "list")
	require.ErrorIs(t, err, constants.ErrUnknownOutputFormat)
}

func TestList_CustomHeaders(t *testing.T) {
	var (
		mu       sync.Mutex
		received http.Header
	)

	server := newAPIRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received = r.Header.Clone()
		mu.Unlock()

		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	useViper(t, map[string]interface{}{
		"hostname": server.URL + "/api",
		"output":   constants.FormatJSON,
		"header":   []string{"X-Trace-Id: abc123", "Accept-Language:en"},
	})

	_, err := executeCommand(t, NewNodesCommand(), "list")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	require.NotNil(t, received)
	assert.Equal(t, "abc123", received.Get("X-Trace-Id"))
	assert.Equal(t, "en", received.Get("Accept-Language"))
	assert.Equal(t, "application/json", received.Get("Accept"))
}

func TestList_InvalidHeader(t *testing.T) {
	useViper(t, map[string]interface{}{
		"hostname": "http://127.0.0.1:1/api",
		"header":   []string{"no-separator"},
	})

	_, err := executeCommand(t, NewNodesCommand(), "list")
	require.ErrorIs(t, err, constants.ErrInvalidHeader)
}
