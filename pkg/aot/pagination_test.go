package aot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

var errPageFetch = errors.New("connection reset")

// pageServer is an in-memory PageFollower over a fixed number of pages.
type pageServer struct {
	pages    []*aot.Envelope
	requests []string
	failAt   string
}

func newPageServer(count int) *pageServer {
	s := &pageServer{}

	for i := 1; i <= count; i++ {
		env := &aot.Envelope{
			Data: json.RawMessage(fmt.Sprintf(`[{"node_vsn":"%03d"}]`, i)),
			Meta: &aot.Meta{Links: &aot.Links{}},
		}

		if i < count {
			env.Meta.Links.Next = fmt.Sprintf("https://api.arrayofthings.org/api/nodes?page=%d", i+1)
		}

		s.pages = append(s.pages, env)
	}

	return s
}

func (s *pageServer) GetNextPage(_ context.Context, env *aot.Envelope) (*aot.Envelope, error) {
	next := env.Next()
	if next == "" {
		return nil, nil
	}

	s.requests = append(s.requests, next)

	if next == s.failAt {
		return nil, errPageFetch
	}

	var page int

	_, err := fmt.Sscanf(next, "https://api.arrayofthings.org/api/nodes?page=%d", &page)
	if err != nil {
		return nil, err
	}

	return s.pages[page-1], nil
}

func TestPageIterator(t *testing.T) {
	t.Parallel()

	t.Run("walks until next link is absent", func(t *testing.T) {
		t.Parallel()

		server := newPageServer(3)
		it := aot.NewPageIterator(context.Background(), server, server.pages[0])

		var seen []*aot.Envelope
		for it.Next() {
			seen = append(seen, it.Page())
		}

		require.NoError(t, it.Err())
		assert.Len(t, seen, 3)
		assert.Equal(t, 3, it.Pages())
		assert.Equal(t, []string{
			"https://api.arrayofthings.org/api/nodes?page=2",
			"https://api.arrayofthings.org/api/nodes?page=3",
		}, server.requests)
		assert.False(t, it.Next())
	})

	t.Run("single page without meta", func(t *testing.T) {
		t.Parallel()

		server := newPageServer(1)
		first := &aot.Envelope{Data: json.RawMessage(`[]`)}
		it := aot.NewPageIterator(context.Background(), server, first)

		assert.True(t, it.Next())
		assert.False(t, it.Next())
		require.NoError(t, it.Err())
		assert.Empty(t, server.requests)
	})

	t.Run("nil first page", func(t *testing.T) {
		t.Parallel()

		it := aot.NewPageIterator(context.Background(), newPageServer(1), nil)

		assert.False(t, it.Next())
		require.NoError(t, it.Err())
	})

	t.Run("max pages", func(t *testing.T) {
		t.Parallel()

		server := newPageServer(5)
		it := aot.NewPageIterator(context.Background(), server, server.pages[0], aot.WithMaxPages(2))

		count := 0
		for it.Next() {
			count++
		}

		assert.Equal(t, 2, count)
		require.ErrorIs(t, it.Err(), aot.ErrMaxPagesReached)
		assert.Len(t, server.requests, 1)
	})

	t.Run("max pages equal to available pages", func(t *testing.T) {
		t.Parallel()

		server := newPageServer(2)
		it := aot.NewPageIterator(context.Background(), server, server.pages[0], aot.WithMaxPages(2))

		for it.Next() {
		}

		require.NoError(t, it.Err())
		assert.Equal(t, 2, it.Pages())
	})

	t.Run("follower error stops the walk", func(t *testing.T) {
		t.Parallel()

		server := newPageServer(4)
		server.failAt = "https://api.arrayofthings.org/api/nodes?page=3"
		it := aot.NewPageIterator(context.Background(), server, server.pages[0])

		for it.Next() {
		}

		require.ErrorIs(t, it.Err(), errPageFetch)
		assert.Contains(t, it.Err().Error(), "fetching page 3")
		assert.Equal(t, 2, it.Pages())
	})
}

func TestWalk(t *testing.T) {
	t.Parallel()

	server := newPageServer(3)
	errStop := errors.New("stop")

	var visited int

	err := aot.Walk(context.Background(), server, server.pages[0], func(page *aot.Envelope) error {
		visited++
		if visited == 2 {
			return errStop
		}

		return nil
	})

	require.ErrorIs(t, err, errStop)
	assert.Equal(t, 2, visited)
}

func TestCollectAll(t *testing.T) {
	t.Parallel()

	server := newPageServer(3)

	nodes, err := aot.CollectAll[aot.Node](context.Background(), server, server.pages[0])
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "001", nodes[0].VSN)
	assert.Equal(t, "003", nodes[2].VSN)

	server.failAt = "https://api.arrayofthings.org/api/nodes?page=3"

	partial, err := aot.CollectAll[aot.Node](context.Background(), server, server.pages[0])
	require.ErrorIs(t, err, errPageFetch)
	assert.Len(t, partial, 2)
}
