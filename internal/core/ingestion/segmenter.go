package ingestion

import (
	"fmt"
	"sort"
	"strings"
)

// maxExcerptLen はチャンク抜粋の最大文字数
// ベクトルインデックスに持たせるメタデータのサイズを抑えるための上限
const maxExcerptLen = 1000

// Segment はトランスクリプトを固定長チャンクに分割する
//
// 各スニペットはバケット番号 int(start / chunkDuration) に振り分けられ、
// バケットごとにスニペットのテキストを元の順序のままスペース結合して
// 1つのチャンクを生成する。バケット間のオーバーラップや無音区間の
// 補完は行わない（スニペットが存在しないバケットはチャンクを生成しない）。
//
// スニペットは時刻順で供給される前提だが、ソースが順序を保証しない
// ケースに備えて Start の安定ソートを先に行う。Start が負のスニペットも
// 受け付ける（バケット番号が負になるだけで式自体は定義可能なため）。
func Segment(transcript *VideoTranscript, chunkDuration int) ([]*Chunk, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkDuration, chunkDuration)
	}

	snippets := make([]TranscriptSnippet, len(transcript.Snippets))
	copy(snippets, transcript.Snippets)
	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Start < snippets[j].Start
	})

	// バケット番号 -> テキスト群（挿入順を保持するため順序リストを併用）
	buckets := make(map[int][]string)
	order := make([]int, 0)

	for _, snippet := range snippets {
		bucket := int(snippet.Start / float64(chunkDuration))
		if _, ok := buckets[bucket]; !ok {
			order = append(order, bucket)
		}
		buckets[bucket] = append(buckets[bucket], snippet.Text)
	}

	chunks := make([]*Chunk, 0, len(order))
	for _, bucket := range order {
		text := strings.Join(buckets[bucket], " ")
		chunks = append(chunks, &Chunk{
			ChunkID:   fmt.Sprintf("%s_chunk_%d", transcript.VideoID, bucket),
			VideoID:   transcript.VideoID,
			Title:     transcript.Title,
			StartTime: bucket * chunkDuration,
			Text:      text,
			Excerpt:   truncateExcerpt(text, maxExcerptLen),
		})
	}

	return chunks, nil
}

// truncateExcerpt はテキストを最大 limit 文字（rune 単位）に切り詰める
func truncateExcerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
