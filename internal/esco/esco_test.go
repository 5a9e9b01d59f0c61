package esco

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func noWait(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &delays
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(zap.NewNop(), Config{APIURL: srv.URL})
}

func TestSearchSkills(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SearchPath, r.URL.Path)
		got = map[string]string{
			"text":     r.URL.Query().Get("text"),
			"type":     r.URL.Query().Get("type"),
			"language": r.URL.Query().Get("language"),
			"limit":    r.URL.Query().Get("limit"),
		}
		writeJSON(w, map[string]any{
			"_embedded": map[string]any{
				"results": []map[string]any{
					{"uri": "http://data.europa.eu/esco/skill/1", "title": "Python", "className": "Skill"},
					{"uri": "http://data.europa.eu/esco/skill/2", "title": "Python (computer programming)"},
				},
			},
		})
	})

	concepts, err := client.SearchSkills(context.Background(), " python ")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"text": "python", "type": "skill", "language": "en", "limit": "10"}, got)
	require.Len(t, concepts, 2)
	assert.Equal(t, Concept{URI: "http://data.europa.eu/esco/skill/1", Title: "Python"}, concepts[0])
}

func TestSearchWithoutResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"total": 0})
	})

	concepts, err := client.SearchOccupations(context.Background(), "astronaut chef")
	require.NoError(t, err)
	assert.Empty(t, concepts)
}

func TestSearchEmptyTextSkipsRequest(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	concepts, err := client.SearchSkills(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, concepts)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGetOccupation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, OccupationPath, r.URL.Path)
		assert.Equal(t, "http://data.europa.eu/esco/occupation/dev", r.URL.Query().Get("uri"))

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(map[string]any{
			"uri":   "http://data.europa.eu/esco/occupation/dev",
			"title": "software developer",
			"code":  "2512.4",
			"description": map[string]any{
				"en": map[string]any{"literal": "Software developers implement software.", "mimetype": "plain/text"},
			},
			"preferredLabel":   map[string]any{"en": "software developer"},
			"alternativeLabel": map[string]any{"en": []string{"programmer", "coder"}},
			"_links": map[string]any{
				"self": map[string]any{"href": "ignored"},
				"hasEssentialSkill": []map[string]any{
					{"uri": "s1", "title": "Python", "skillType": "http://data.europa.eu/esco/skill-type/skill", "href": "x"},
				},
				"hasOptionalSkill": []map[string]any{
					{"uri": "s2", "title": "Agile", "skillType": "http://data.europa.eu/esco/skill-type/knowledge"},
				},
			},
		})
	})

	occupation, err := client.GetOccupation(context.Background(), "http://data.europa.eu/esco/occupation/dev")
	require.NoError(t, err)

	assert.Equal(t, "software developer", occupation.Title)
	assert.Equal(t, "Software developers implement software.", occupation.Description)
	assert.Equal(t, "software developer", occupation.PreferredLabel)
	assert.Equal(t, []string{"programmer", "coder"}, occupation.AlternativeLabels)
	assert.Equal(t, "2512.4", occupation.Code)
	assert.Equal(t, []Skill{{URI: "s1", Title: "Python", SkillType: "skill"}}, occupation.EssentialSkills)
	assert.Equal(t, []Skill{{URI: "s2", Title: "Agile", SkillType: "knowledge"}}, occupation.OptionalSkills)
}

func TestSkillOccupations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SkillPath, r.URL.Path)
		writeJSON(w, map[string]any{
			"uri": r.URL.Query().Get("uri"),
			"_links": map[string]any{
				"isEssentialForOccupation": []map[string]any{{"uri": "o1"}, {"uri": "o2"}},
				"isOptionalForOccupation":  []map[string]any{{"uri": "o2"}, {"uri": "o3"}},
			},
		})
	})

	occupations, err := client.SkillOccupations(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2", "o3"}, occupations)
}

func TestRetriesServerErrors(t *testing.T) {
	delays := noWait(t)

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]any{"_embedded": map[string]any{"results": []any{}}})
	})

	_, err := client.SearchSkills(context.Background(), "python")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestRetriesExhausted(t *testing.T) {
	noWait(t)

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchSkills(context.Background(), "python")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, int32(defaultMaxRetries), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	noWait(t)

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetOccupation(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]string
	puts int
}

func (m *memoryCache) Get(_ context.Context, uri string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[uri]
	return v, ok, nil
}

func (m *memoryCache) Put(_ context.Context, uri string, occupations []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[uri] = occupations
	m.puts++
	return nil
}

func TestBatchCoOccurrence(t *testing.T) {
	links := map[string][]string{
		"seeker-a": {"o1", "o2"},
		"seeker-b": {"o9"},
		"job-x":    {"o2", "o3"},
		"job-y":    {"o1", "o2"},
	}

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		uri := r.URL.Query().Get("uri")
		if uri == "broken" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		refs := make([]map[string]any, 0)
		for _, o := range links[uri] {
			refs = append(refs, map[string]any{"uri": o})
		}
		writeJSON(w, map[string]any{"_links": map[string]any{"isEssentialForOccupation": refs}})
	})

	cache := &memoryCache{data: map[string][]string{"job-y": {"o1", "o2"}}}
	client.WithCache(cache)

	co, err := client.BatchCoOccurrence(context.Background(),
		[]string{"seeker-a", "seeker-b", "seeker-a", "broken"},
		[]string{"job-x", "job-y"},
	)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/3.0, co.Score("seeker-a", "job-x"), 1e-9)
	assert.InDelta(t, 1.0, co.Score("seeker-a", "job-y"), 1e-9)
	assert.NotContains(t, co, "seeker-b")
	assert.NotContains(t, co, "broken")

	// job-y came from the cache.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, cache.puts)
}

func TestBatchCoOccurrenceLogsDegradedLookups(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(zap.New(core), Config{APIURL: srv.URL})

	co, err := client.BatchCoOccurrence(context.Background(), []string{"a"}, []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, co)
	assert.Equal(t, 2, observed.FilterMessage("resolving skill occupations failed, assuming none").Len())
}

func TestBatchCoOccurrenceCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.BatchCoOccurrence(ctx, []string{"a"}, []string{"b"})
	require.ErrorIs(t, err, context.Canceled)
}
