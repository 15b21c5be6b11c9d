package ask

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMatch(chunkID string, score float64) *RetrievedMatch {
	return &RetrievedMatch{
		ChunkID: chunkID,
		Score:   score,
		Metadata: ChunkMetadata{
			VideoID:     "abc123",
			Title:       "Style Basics",
			StartTime:   mo.Some(90),
			TextExcerpt: "fit is everything",
		},
	}
}

func TestAssembleContextBuildsCitationURL(t *testing.T) {
	_, sources, err := AssembleContext([]*RetrievedMatch{validMatch("abc123_chunk_3", 0.91)})
	require.NoError(t, err)
	require.Len(t, sources, 1)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc123&t=90s", sources[0].URL)
	assert.Equal(t, "Style Basics", sources[0].Title)
}

func TestAssembleContextRoundsScoreForDisplay(t *testing.T) {
	match := validMatch("c1", 0.8675)

	_, sources, err := AssembleContext([]*RetrievedMatch{match})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, 0.87, sources[0].Score)

	// 丸めは表示専用で生スコアは変更しない
	assert.Equal(t, 0.8675, match.Score)
}

func TestAssembleContextJoinsExcerptsWithSeparator(t *testing.T) {
	first := validMatch("c1", 0.9)
	first.Metadata.TextExcerpt = "first excerpt"
	second := validMatch("c2", 0.8)
	second.Metadata.TextExcerpt = "second excerpt"

	context, _, err := AssembleContext([]*RetrievedMatch{first, second})
	require.NoError(t, err)
	assert.Equal(t, "first excerpt\n\n---\n\nsecond excerpt", context)
}

func TestAssembleContextPreservesInputOrder(t *testing.T) {
	// 入力はスコア降順で供給される前提。アセンブラは並べ替えない
	matches := []*RetrievedMatch{
		validMatch("c1", 0.9),
		validMatch("c2", 0.5),
		validMatch("c3", 0.7),
	}

	_, sources, err := AssembleContext(matches)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, 0.9, sources[0].Score)
	assert.Equal(t, 0.5, sources[1].Score)
	assert.Equal(t, 0.7, sources[2].Score)
}

func TestAssembleContextKeepsDuplicateCitations(t *testing.T) {
	// 同一動画・同一時刻の重複は仕様上そのまま引用に残す（重複排除しない）
	matches := []*RetrievedMatch{
		validMatch("c1", 0.9),
		validMatch("c1", 0.9),
	}

	_, sources, err := AssembleContext(matches)
	require.NoError(t, err)
	assert.Len(t, sources, 2)
	assert.Equal(t, sources[0], sources[1])
}

func TestAssembleContextRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RetrievedMatch)
		field  string
	}{
		{
			name:   "missing excerpt",
			mutate: func(m *RetrievedMatch) { m.Metadata.TextExcerpt = "" },
			field:  "text_excerpt",
		},
		{
			name:   "missing title",
			mutate: func(m *RetrievedMatch) { m.Metadata.Title = "" },
			field:  "title",
		},
		{
			name:   "missing video id",
			mutate: func(m *RetrievedMatch) { m.Metadata.VideoID = "" },
			field:  "video_id",
		},
		{
			name:   "missing start time",
			mutate: func(m *RetrievedMatch) { m.Metadata.StartTime = mo.None[int]() },
			field:  "start_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := validMatch("bad_chunk", 0.9)
			tt.mutate(match)

			_, _, err := AssembleContext([]*RetrievedMatch{match})
			require.Error(t, err)

			var malformed *MalformedMatchError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
			assert.Equal(t, "bad_chunk", malformed.ChunkID)
		})
	}
}

func TestAssembleContextStartTimeZeroIsValid(t *testing.T) {
	match := validMatch("c1", 0.9)
	match.Metadata.StartTime = mo.Some(0)

	_, sources, err := AssembleContext([]*RetrievedMatch{match})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123&t=0s", sources[0].URL)
}

func TestAssembleContextEmptyMatches(t *testing.T) {
	context, sources, err := AssembleContext(nil)
	require.NoError(t, err)
	assert.Empty(t, context)
	assert.Empty(t, sources)
}
