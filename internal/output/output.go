// Package output renders API responses for the CLI as a table, JSON or YAML,
// optionally projected through a JSONPath expression.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

const (
	yamlIndent   = 2
	maxCellWidth = 40
)

// Renderer writes values in one output format.
type Renderer struct {
	Out    io.Writer
	Format string
	// JSONPath, when set, selects part of the document before rendering.
	JSONPath string
	// Columns fixes the table columns for lists of objects. When empty the
	// keys of the first item are used in sorted order.
	Columns []string
}

// ResolveFormat validates format and turns "auto" into table when out is a
// terminal and JSON otherwise.
func ResolveFormat(format string, out io.Writer) (string, error) {
	switch strings.ToLower(format) {
	case "", constants.FormatAuto:
		if isTerminal(out) {
			return constants.FormatTable, nil
		}

		return constants.FormatJSON, nil
	case constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON:
		return constants.FormatJSON, nil
	case constants.FormatYAML:
		return constants.FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrUnknownOutputFormat, format)
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// Render writes v. An *aot.Envelope is rendered whole for JSON and YAML and by
// its data for tables.
func (r *Renderer) Render(v interface{}) error {
	format, err := ResolveFormat(r.Format, r.Out)
	if err != nil {
		return err
	}

	doc, err := toGeneric(v)
	if err != nil {
		return err
	}

	if r.JSONPath != "" {
		doc, err = Select(r.JSONPath, doc)
		if err != nil {
			return err
		}
	} else if env, ok := v.(*aot.Envelope); ok && format == constants.FormatTable {
		doc, err = toGeneric(env.Data)
		if err != nil {
			return err
		}
	}

	switch format {
	case constants.FormatJSON:
		return r.renderJSON(doc)
	case constants.FormatYAML:
		return r.renderYAML(doc)
	default:
		return r.renderTable(doc)
	}
}

// Select evaluates a JSONPath expression against a decoded JSON document.
func Select(expr string, doc interface{}) (interface{}, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, constants.ErrEmptyJSONPath
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("jsonpath %s: %w", expr, err)
	}

	return val, nil
}

// toGeneric round-trips v through JSON so that every value is made of maps,
// slices and scalars.
func toGeneric(v interface{}) (interface{}, error) {
	var data []byte

	switch val := v.(type) {
	case json.RawMessage:
		data = val
	case []byte:
		data = val
	default:
		var err error

		data, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding data to JSON: %w", err)
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc interface{}

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}

	return doc, nil
}

func (r *Renderer) renderJSON(doc interface{}) error {
	encoder := json.NewEncoder(r.Out)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

func (r *Renderer) renderYAML(doc interface{}) error {
	encoder := yaml.NewEncoder(r.Out)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

func (r *Renderer) renderTable(doc interface{}) error {
	switch val := doc.(type) {
	case []interface{}:
		return r.renderList(val)
	case map[string]interface{}:
		return r.renderObject(val)
	default:
		_, err := fmt.Fprintln(r.Out, FormatCell(val))

		return err
	}
}

func (r *Renderer) renderList(items []interface{}) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(r.Out, "No results found.")

		return err
	}

	columns := r.Columns
	if len(columns) == 0 {
		columns = inferColumns(items)
	}

	table := tablewriter.NewWriter(r.Out)

	if len(columns) == 0 {
		table.Header("Value")

		for _, item := range items {
			err := table.Append([]string{FormatCell(item)})
			if err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}

		return renderTable(table)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = Title(c)
	}

	table.Header(header...)

	for _, item := range items {
		obj, _ := item.(map[string]interface{})
		row := make([]string, len(columns))

		for i, c := range columns {
			row[i] = FormatCell(obj[c])
		}

		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return renderTable(table)
}

func (r *Renderer) renderObject(obj map[string]interface{}) error {
	keys := r.Columns
	if len(keys) == 0 {
		keys = sortedKeys(obj)
	}

	table := tablewriter.NewWriter(r.Out)
	table.Header("Property", "Value")

	for _, key := range keys {
		value, ok := obj[key]
		if !ok {
			continue
		}

		err := table.Append([]string{Title(key), FormatCell(value)})
		if err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return renderTable(table)
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func inferColumns(items []interface{}) []string {
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return nil
	}

	return sortedKeys(first)
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Title turns a JSON field name like "first_observation" into "First Observation".
func Title(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// FormatCell renders a decoded JSON value for a table cell. Timestamps are
// shortened and nested values are inlined as truncated JSON.
func FormatCell(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return ts.UTC().Format(constants.TimestampLayout)
		}

		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}

		return truncate(string(data))
	}
}

// truncate shortens s to maxCellWidth runes.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > maxCellWidth {
		return string(runes[:maxCellWidth-3]) + "..."
	}

	return s
}
