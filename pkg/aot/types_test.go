package aot_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

const listBody = `{
  "meta": {
    "query": {"size": "2"},
    "links": {
      "previous": null,
      "current": "https://api.arrayofthings.org/api/sensors?page=1&size=2",
      "next": "https://api.arrayofthings.org/api/sensors?page=2&size=2"
    }
  },
  "data": [
    {"path": "metsense.bmp180.temperature", "uom": "C", "min": -40, "max": 85},
    {"path": "metsense.htu21d.humidity", "uom": "RH"}
  ]
}`

func TestEnvelope_List(t *testing.T) {
	t.Parallel()

	var env aot.Envelope

	require.NoError(t, json.Unmarshal([]byte(listBody), &env))

	assert.True(t, env.IsList())
	require.NotNil(t, env.Meta)
	assert.Equal(t, "https://api.arrayofthings.org/api/sensors?page=2&size=2", env.Next())
	assert.Empty(t, env.Meta.Links.Previous)
	assert.JSONEq(t, `{"size": "2"}`, string(env.Meta.Query))

	sensors, err := aot.DecodeList[aot.Sensor](&env)
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, "metsense.bmp180.temperature", sensors[0].Path)
	require.NotNil(t, sensors[0].Min)
	assert.InDelta(t, -40.0, *sensors[0].Min, 0.0001)
	assert.Nil(t, sensors[1].Max)

	items, err := env.Items()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestEnvelope_Detail(t *testing.T) {
	t.Parallel()

	var env aot.Envelope

	body := `{"data": {"vsn": "004", "address": "State St & Jackson Blvd", "decommissioned_on": null}}`
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	assert.False(t, env.IsList())
	assert.Nil(t, env.Meta)
	assert.Empty(t, env.Next())

	node, err := aot.DecodeOne[aot.Node](&env)
	require.NoError(t, err)
	assert.Equal(t, "004", node.VSN)
	assert.Nil(t, node.DecommissionedOn)

	_, err = env.Items()
	require.Error(t, err)
}

func TestEnvelope_Empty(t *testing.T) {
	t.Parallel()

	var env *aot.Envelope

	assert.False(t, env.IsList())
	assert.Empty(t, env.Next())

	_, err := aot.DecodeList[aot.Project](&aot.Envelope{})
	require.ErrorIs(t, err, aot.ErrNoMoreItems)
}

func TestEnvelope_LenientMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		meta     string
		next     string
		query    string
		hasLinks bool
	}{
		{
			name:     "query as pairs and null next",
			meta:     `{"query": [["size", "200"]], "links": {"next": null}}`,
			query:    `[["size", "200"]]`,
			hasLinks: true,
		},
		{
			name:     "non string link values",
			meta:     `{"links": {"previous": 1, "current": {"href": "x"}, "next": "https://api.arrayofthings.org/api/nodes?page=2"}}`,
			next:     "https://api.arrayofthings.org/api/nodes?page=2",
			hasLinks: true,
		},
		{
			name: "links not an object",
			meta: `{"links": ["https://api.arrayofthings.org/api/nodes?page=2"], "query": null}`,
		},
		{
			name: "meta not an object",
			meta: `"unexpected"`,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var env aot.Envelope

			body := `{"meta": ` + tt.meta + `, "data": []}`
			require.NoError(t, json.Unmarshal([]byte(body), &env))
			require.NotNil(t, env.Meta)

			assert.Equal(t, tt.next, env.Next())
			assert.Equal(t, tt.hasLinks, env.Meta.Links != nil)

			if tt.query == "" {
				assert.Empty(t, env.Meta.Query)
			} else {
				assert.JSONEq(t, tt.query, string(env.Meta.Query))
			}

			assert.JSONEq(t, tt.meta, string(env.Meta.Raw()))
		})
	}
}

func TestEnvelope_MetaRoundTrip(t *testing.T) {
	t.Parallel()

	body := `{"meta": {"query": {"size": "2"}, "total": 3, "links": {"next": null}}, "data": []}`

	var env aot.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	out, err := json.Marshal(&env)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))

	constructed, err := json.Marshal(&aot.Envelope{
		Data: json.RawMessage(`[]`),
		Meta: &aot.Meta{Links: &aot.Links{Next: "https://api.arrayofthings.org/api/nodes?page=2"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"meta": {"links": {"next": "https://api.arrayofthings.org/api/nodes?page=2"}}, "data": []}`, string(constructed))
	assert.Nil(t, (&aot.Meta{}).Raw())
}
