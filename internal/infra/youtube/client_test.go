package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/tube-rag/internal/core/errs"
	"github.com/jinford/tube-rag/internal/core/ingestion"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestListChannelVideos_FollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			assert.Equal(t, "UC123", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
		case "/playlistItems":
			assert.Equal(t, "UU123", r.URL.Query().Get("playlistId"))
			if r.URL.Query().Get("pageToken") == "" {
				fmt.Fprint(w, `{
					"nextPageToken": "page2",
					"items": [
						{"snippet": {"title": "Video One", "resourceId": {"videoId": "vid1"}}},
						{"snippet": {"title": "Video Two", "resourceId": {"videoId": "vid2"}}}
					]
				}`)
			} else {
				assert.Equal(t, "page2", r.URL.Query().Get("pageToken"))
				fmt.Fprint(w, `{
					"items": [
						{"snippet": {"title": "Video Three", "resourceId": {"videoId": "vid3"}}}
					]
				}`)
			}
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	videos, err := client.ListChannelVideos(context.Background(), "UC123")
	require.NoError(t, err)

	assert.Equal(t, []ingestion.VideoRef{
		{ID: "vid1", Title: "Video One"},
		{ID: "vid2", Title: "Video Two"},
		{ID: "vid3", Title: "Video Three"},
	}, videos)
}

func TestListChannelVideos_ChannelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.ListChannelVideos(context.Background(), "UC999")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestGetVideo_ResolvesTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "vid1", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[{"id":"vid1","snippet":{"title":"Resolved Title"}}]}`)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	video, err := client.GetVideo(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, ingestion.VideoRef{ID: "vid1", Title: "Resolved Title"}, video)
}

func TestGetVideo_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestTranscriptFetch_ParsesTimedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vid1", r.URL.Query().Get("v"))
		assert.Equal(t, "json3", r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `{
			"events": [
				{"tStartMs": 0, "dDurationMs": 5000, "segs": [{"utf8": "hello "}, {"utf8": "world"}]},
				{"tStartMs": 5500, "dDurationMs": 3000, "segs": [{"utf8": "next line"}]},
				{"tStartMs": 9000, "dDurationMs": 1000}
			]
		}`)
	}))
	defer server.Close()

	client := NewTranscriptClient(WithTranscriptBaseURL(server.URL))

	snippets, err := client.Fetch(context.Background(), "vid1")
	require.NoError(t, err)

	// segs の無いイベントはスキップされる
	require.Len(t, snippets, 2)
	assert.Equal(t, ingestion.TranscriptSnippet{Text: "hello world", Start: 0, Duration: 5}, snippets[0])
	assert.Equal(t, ingestion.TranscriptSnippet{Text: "next line", Start: 5.5, Duration: 3}, snippets[1])
}

func TestTranscriptFetch_EmptyBodyMeansNoTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 字幕の無い動画では timedtext は空ボディを返す
	}))
	defer server.Close()

	client := NewTranscriptClient(WithTranscriptBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), "vid1")
	assert.ErrorIs(t, err, ingestion.ErrNoTranscript)
}

func TestTranscriptFetch_NotFoundMeansNoTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewTranscriptClient(WithTranscriptBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), "vid1")
	assert.ErrorIs(t, err, ingestion.ErrNoTranscript)
}

func TestProvider_FetchTranscript_ResolvesMissingTitle(t *testing.T) {
	dataServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos", r.URL.Path)
		fmt.Fprint(w, `{"items":[{"id":"vid1","snippet":{"title":"From Data API"}}]}`)
	}))
	defer dataServer.Close()

	textServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"hi"}]}]}`)
	}))
	defer textServer.Close()

	client, err := NewClient("test-key", WithBaseURL(dataServer.URL))
	require.NoError(t, err)
	provider := NewProvider(client, NewTranscriptClient(WithTranscriptBaseURL(textServer.URL)))

	transcript, err := provider.FetchTranscript(context.Background(), ingestion.VideoRef{ID: "vid1"})
	require.NoError(t, err)
	assert.Equal(t, "From Data API", transcript.Title)
	assert.Equal(t, "vid1", transcript.VideoID)
	require.Len(t, transcript.Snippets, 1)
}

func TestProvider_FetchTranscript_PassesThroughNoTranscript(t *testing.T) {
	textServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer textServer.Close()

	client, err := NewClient("test-key")
	require.NoError(t, err)
	provider := NewProvider(client, NewTranscriptClient(WithTranscriptBaseURL(textServer.URL)))

	_, err = provider.FetchTranscript(context.Background(), ingestion.VideoRef{ID: "vid1", Title: "Known"})
	assert.ErrorIs(t, err, ingestion.ErrNoTranscript)

	// skipped 判定のため UpstreamError にはラップされない
	var upstream *errs.UpstreamError
	assert.False(t, errors.As(err, &upstream))
}
