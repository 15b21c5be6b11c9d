package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	videos      []VideoRef
	transcripts map[string]*VideoTranscript
	fetchErrs   map[string]error
}

func (s *stubSource) ListChannelVideos(ctx context.Context, channelID string) ([]VideoRef, error) {
	return s.videos, nil
}

func (s *stubSource) FetchTranscript(ctx context.Context, video VideoRef) (*VideoTranscript, error) {
	if err, ok := s.fetchErrs[video.ID]; ok {
		return nil, err
	}
	if tr, ok := s.transcripts[video.ID]; ok {
		return tr, nil
	}
	return nil, ErrNoTranscript
}

// stubIndex はメモリ上で上書き登録を再現するスタブ
type stubIndex struct {
	mu      sync.Mutex
	chunks  map[string]Chunk
	upserts int
	err     error
}

func newStubIndex() *stubIndex {
	return &stubIndex{chunks: make(map[string]Chunk)}
}

func (s *stubIndex) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.chunks[chunk.ChunkID] = *chunk
	s.upserts++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngestTranscriptUpsertsAllChunks(t *testing.T) {
	index := newStubIndex()
	svc := NewIngestService(&stubSource{}, index, WithIngestLogger(discardLogger()))

	transcript := &VideoTranscript{
		VideoID: "vid",
		Title:   "title",
		Snippets: []TranscriptSnippet{
			{Text: "a", Start: 0},
			{Text: "b", Start: 45},
			{Text: "c", Start: 95},
		},
	}

	count, err := svc.IngestTranscript(context.Background(), transcript, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, index.chunks, 3)
	assert.Contains(t, index.chunks, "vid_chunk_0")
	assert.Contains(t, index.chunks, "vid_chunk_1")
	assert.Contains(t, index.chunks, "vid_chunk_3")
}

func TestIngestTranscriptIsIdempotent(t *testing.T) {
	index := newStubIndex()
	svc := NewIngestService(&stubSource{}, index, WithIngestLogger(discardLogger()))

	transcript := &VideoTranscript{
		VideoID:  "vid",
		Snippets: []TranscriptSnippet{{Text: "a", Start: 0}},
	}

	_, err := svc.IngestTranscript(context.Background(), transcript, 30)
	require.NoError(t, err)

	// 同じ ChunkID に別テキストを再登録すると上書きされる（マージしない）
	transcript.Snippets[0].Text = "replaced"
	_, err = svc.IngestTranscript(context.Background(), transcript, 30)
	require.NoError(t, err)

	require.Len(t, index.chunks, 1)
	assert.Equal(t, "replaced", index.chunks["vid_chunk_0"].Text)
	assert.Equal(t, 2, index.upserts)
}

func TestIngestReportsPerVideoStatus(t *testing.T) {
	source := &stubSource{
		videos: []VideoRef{
			{ID: "ok", Title: "成功する動画"},
			{ID: "none", Title: "字幕なし動画"},
			{ID: "broken", Title: "失敗する動画"},
		},
		transcripts: map[string]*VideoTranscript{
			"ok": {
				VideoID:  "ok",
				Title:    "成功する動画",
				Snippets: []TranscriptSnippet{{Text: "hello", Start: 0}},
			},
		},
		fetchErrs: map[string]error{
			"broken": fmt.Errorf("transport error"),
		},
	}
	index := newStubIndex()
	svc := NewIngestService(source, index, WithIngestLogger(discardLogger()))

	report, err := svc.Ingest(context.Background(), IngestParams{
		ChannelID: mo.Some("channel"),
	})
	require.NoError(t, err)

	// 動画単位の失敗はバッチを中断しない
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Items, 3)

	assert.Equal(t, StatusSucceeded, report.Items[0].Status)
	assert.Equal(t, 1, report.Items[0].Chunks)
	assert.Equal(t, StatusSkipped, report.Items[1].Status)
	assert.Equal(t, StatusFailed, report.Items[2].Status)
	assert.Contains(t, report.Items[2].Reason, "transport error")
}

func TestIngestRequiresChannelOrVideos(t *testing.T) {
	svc := NewIngestService(&stubSource{}, newStubIndex(), WithIngestLogger(discardLogger()))

	_, err := svc.Ingest(context.Background(), IngestParams{})
	assert.Error(t, err)
}

func TestIngestRejectsChannelAndVideosTogether(t *testing.T) {
	svc := NewIngestService(&stubSource{}, newStubIndex(), WithIngestLogger(discardLogger()))

	_, err := svc.Ingest(context.Background(), IngestParams{
		ChannelID: mo.Some("channel"),
		VideoIDs:  []string{"vid"},
	})
	assert.Error(t, err)
}

func TestIngestTranscriptPropagatesUpsertError(t *testing.T) {
	index := newStubIndex()
	index.err = fmt.Errorf("index unavailable")
	svc := NewIngestService(&stubSource{}, index, WithIngestLogger(discardLogger()))

	transcript := &VideoTranscript{
		VideoID:  "vid",
		Snippets: []TranscriptSnippet{{Text: "a", Start: 0}},
	}

	_, err := svc.IngestTranscript(context.Background(), transcript, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unavailable")
}
