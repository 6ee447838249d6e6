package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// executeCommand runs cmd with args and returns what it wrote to stdout.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// useViper resets the global viper state around a test.
func useViper(t *testing.T, settings map[string]interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	for key, value := range settings {
		viper.Set(key, value)
	}
}

// apiRecorder is a test server that records request URIs and answers with a
// handler chosen by path.
type apiRecorder struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

func newAPIRecorder(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *apiRecorder {
	t.Helper()

	rec := &apiRecorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.URL.RequestURI())
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(rec.Close)

	return rec
}

func (r *apiRecorder) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.requests...)
}
