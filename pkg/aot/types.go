package aot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is a decoded API response. Data is kept verbatim: an object for
// detail calls, an array for list calls.
type Envelope struct {
	Data json.RawMessage `json:"data"           yaml:"data"`
	Meta *Meta           `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Meta carries the query echo and pagination links of list responses. Its
// shape is not validated: Query is kept as raw JSON, link fields that are not
// strings are read as empty, and the decoded object is re-encoded verbatim so
// keys this type does not model survive.
type Meta struct {
	Query json.RawMessage `json:"query,omitempty" yaml:"-"`
	Links *Links          `json:"links,omitempty" yaml:"links,omitempty"`

	raw json.RawMessage
}

// Links holds absolute pagination URLs.
type Links struct {
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Current  string `json:"current,omitempty"  yaml:"current,omitempty"`
	Next     string `json:"next,omitempty"     yaml:"next,omitempty"`
}

// metaFields mirrors Meta without its custom codec.
type metaFields struct {
	Query json.RawMessage `json:"query,omitempty"`
	Links *Links          `json:"links,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. It never fails on valid JSON.
func (m *Meta) UnmarshalJSON(data []byte) error {
	*m = Meta{raw: append(json.RawMessage(nil), data...)}

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}

	if query, ok := fields["query"]; ok && !isJSONNull(query) {
		m.Query = query
	}

	var links map[string]json.RawMessage
	if json.Unmarshal(fields["links"], &links) == nil && links != nil {
		m.Links = &Links{
			Previous: linkString(links["previous"]),
			Current:  linkString(links["current"]),
			Next:     linkString(links["next"]),
		}
	}

	return nil
}

// MarshalJSON implements json.Marshaler. Decoded metas are written back as
// received; constructed ones are encoded from their fields.
func (m Meta) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}

	return json.Marshal(metaFields{Query: m.Query, Links: m.Links})
}

// Raw returns the meta object as received, or nil for a constructed Meta.
func (m *Meta) Raw() json.RawMessage {
	if m == nil {
		return nil
	}

	return m.raw
}

func linkString(data json.RawMessage) string {
	var s string
	if json.Unmarshal(data, &s) != nil {
		return ""
	}

	return s
}

func isJSONNull(data json.RawMessage) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// Next returns the next page URL, or "" when there is none.
func (e *Envelope) Next() string {
	if e == nil || e.Meta == nil || e.Meta.Links == nil {
		return ""
	}

	return e.Meta.Links.Next
}

// IsList reports whether Data holds a JSON array.
func (e *Envelope) IsList() bool {
	if e == nil {
		return false
	}

	trimmed := bytes.TrimSpace(e.Data)

	return len(trimmed) > 0 && trimmed[0] == '['
}

// DecodeData unmarshals Data into v.
func (e *Envelope) DecodeData(v interface{}) error {
	if e == nil || len(e.Data) == 0 {
		return fmt.Errorf("decoding envelope data: %w", ErrNoMoreItems)
	}

	err := json.Unmarshal(e.Data, v)
	if err != nil {
		return fmt.Errorf("decoding envelope data: %w", err)
	}

	return nil
}

// Items decodes a list envelope into generic JSON objects.
func (e *Envelope) Items() ([]interface{}, error) {
	var items []interface{}

	err := e.DecodeData(&items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// DecodeList decodes a list envelope into typed resources.
func DecodeList[T any](e *Envelope) ([]T, error) {
	var items []T

	err := e.DecodeData(&items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// DecodeOne decodes a detail envelope into a typed resource.
func DecodeOne[T any](e *Envelope) (*T, error) {
	var item T

	err := e.DecodeData(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Project is a deployment grouping of nodes, e.g. "chicago".
type Project struct {
	Name              string          `json:"name"                         yaml:"name"`
	Slug              string          `json:"slug"                         yaml:"slug"`
	FirstObservation  *time.Time      `json:"first_observation,omitempty"  yaml:"first_observation,omitempty"`
	LatestObservation *time.Time      `json:"latest_observation,omitempty" yaml:"latest_observation,omitempty"`
	BBox              json.RawMessage `json:"bbox,omitempty"               yaml:"-"`
	Hull              json.RawMessage `json:"hull,omitempty"               yaml:"-"`
	Archive           string          `json:"archive_url,omitempty"        yaml:"archive_url,omitempty"`
}

// Node is a physical sensor node identified by its VSN.
type Node struct {
	VSN              string          `json:"vsn"                         yaml:"vsn"`
	Address          string          `json:"address,omitempty"           yaml:"address,omitempty"`
	Description      string          `json:"description,omitempty"       yaml:"description,omitempty"`
	Location         json.RawMessage `json:"location,omitempty"          yaml:"-"`
	CommissionedOn   *time.Time      `json:"commissioned_on,omitempty"   yaml:"commissioned_on,omitempty"`
	DecommissionedOn *time.Time      `json:"decommissioned_on,omitempty" yaml:"decommissioned_on,omitempty"`
}

// Sensor describes a measurement channel, addressed by its dotted path.
type Sensor struct {
	Path      string   `json:"path"                 yaml:"path"`
	UOM       string   `json:"uom,omitempty"        yaml:"uom,omitempty"`
	Min       *float64 `json:"min,omitempty"        yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"        yaml:"max,omitempty"`
	DataSheet string   `json:"data_sheet,omitempty" yaml:"data_sheet,omitempty"`
	Ontology  string   `json:"ontology,omitempty"   yaml:"ontology,omitempty"`
	Subsystem string   `json:"subsystem,omitempty"  yaml:"subsystem,omitempty"`
	Sensor    string   `json:"sensor,omitempty"     yaml:"sensor,omitempty"`
	Parameter string   `json:"parameter,omitempty"  yaml:"parameter,omitempty"`
}

// Observation is a single converted measurement.
type Observation struct {
	NodeVSN    string          `json:"node_vsn"           yaml:"node_vsn"`
	SensorPath string          `json:"sensor_path"        yaml:"sensor_path"`
	Timestamp  time.Time       `json:"timestamp"          yaml:"timestamp"`
	Value      float64         `json:"value"              yaml:"value"`
	UOM        string          `json:"uom,omitempty"      yaml:"uom,omitempty"`
	Location   json.RawMessage `json:"location,omitempty" yaml:"-"`
}

// RawObservation is a measurement with both the raw and the human readable value.
type RawObservation struct {
	NodeVSN    string    `json:"node_vsn"      yaml:"node_vsn"`
	SensorPath string    `json:"sensor_path"   yaml:"sensor_path"`
	Timestamp  time.Time `json:"timestamp"     yaml:"timestamp"`
	HRF        *float64  `json:"hrf,omitempty" yaml:"hrf,omitempty"`
	Raw        *float64  `json:"raw,omitempty" yaml:"raw,omitempty"`
}
