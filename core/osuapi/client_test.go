package osuapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:           srv.URL,
		TimeoutSeconds:    5,
		RequestsPerMinute: 6000, // effectively unlimited for tests
		Retries:           3,
	}, zap.NewNop())
}

func TestClient_GetBeatmapset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/beatmapsets/91", r.URL.Path)
		w.Write([]byte(`{
			"id": 91,
			"artist": "Artist",
			"title": "Title",
			"creator": "mapper",
			"beatmaps": [
				{"id": 315, "beatmapset_id": 91, "checksum": "abc", "version": "Hard", "ranked": 1}
			]
		}`))
	})

	set, err := client.GetBeatmapset(context.Background(), 91)
	assert.NoError(t, err)
	assert.Equal(t, 91, set.ID)
	assert.Len(t, set.Beatmaps, 1)
	assert.Equal(t, "abc", set.Beatmaps[0].Checksum)
	assert.Equal(t, 1, set.Beatmaps[0].Status)
}

// A 200 with an empty beatmaps list is an authoritative answer and must be
// returned to the caller, not collapsed into ErrNotFound.
func TestClient_GetBeatmapset_AuthoritativeEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 91, "beatmaps": []}`))
	})

	set, err := client.GetBeatmapset(context.Background(), 91)
	assert.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set.Beatmaps)
}

func TestClient_NotFound(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetBeatmapset(context.Background(), 404404)
	assert.ErrorIs(t, err, ErrNotFound)
	// 404 is definitive, the client must not retry it.
	assert.Equal(t, 1, calls)
}

func TestClient_RetriesTransientFailure(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": 1, "beatmapset_id": 2, "checksum": "xyz"}`))
	})

	bmap, err := client.LookupBeatmap(context.Background(), Lookup{Checksum: "xyz"})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, bmap.BeatmapsetID)
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.LookupBeatmap(context.Background(), Lookup{ID: 315})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, calls)
}

func TestClient_LookupBeatmap_QueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/beatmaps/lookup", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("checksum"))
		w.Write([]byte(`{"id": 315, "beatmapset_id": 91, "checksum": "abc123"}`))
	})

	bmap, err := client.LookupBeatmap(context.Background(), Lookup{Checksum: "abc123"})
	assert.NoError(t, err)
	assert.Equal(t, 91, bmap.BeatmapsetID)
}
