package ingestion

import (
	"context"
	"errors"
)

var (
	// ErrInvalidChunkDuration はチャンク長が0以下の場合に返されます
	ErrInvalidChunkDuration = errors.New("chunk duration must be positive")

	// ErrNoTranscript は動画にトランスクリプトが存在しない場合に返されます
	// （バッチ処理では致命的エラーとせず skipped として扱う）
	ErrNoTranscript = errors.New("no transcript available")
)

// TranscriptSnippet はトランスクリプトの1断片を表す
// 外部のトランスクリプトソースから供給される不変データ
type TranscriptSnippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // 開始時刻（秒）
	Duration float64 `json:"duration"` // 継続時間（秒）
}

// VideoTranscript は1動画分のトランスクリプトを表す
type VideoTranscript struct {
	VideoID  string              `json:"video_id"`
	Title    string              `json:"title"`
	Snippets []TranscriptSnippet `json:"transcript"`
}

// VideoRef はインデックス対象の動画への参照を表す
type VideoRef struct {
	ID    string
	Title string
}

// Chunk は検索の最小単位となる固定長チャンクを表す
// ChunkID は (VideoID, バケット番号) から決定的に導出され、
// 同一トランスクリプト・同一チャンク長での再実行は必ず同一のレコードを生成する
type Chunk struct {
	ChunkID   string // {video_id}_chunk_{bucket}
	VideoID   string
	Title     string
	StartTime int    // バケット下端（秒）
	Text      string // バケット内スニペットのスペース結合
	Excerpt   string // Text の先頭 maxExcerptLen 文字（表示・コンテキスト用）
}

// TranscriptSource はトランスクリプト取得のインターフェース
// テスト時のスタブ用に消費者側で定義
type TranscriptSource interface {
	// ListChannelVideos はチャンネルの全動画を列挙する
	ListChannelVideos(ctx context.Context, channelID string) ([]VideoRef, error)

	// FetchTranscript は動画のトランスクリプトを取得する
	// トランスクリプトが存在しない場合は ErrNoTranscript を返す
	FetchTranscript(ctx context.Context, video VideoRef) (*VideoTranscript, error)
}

// VectorIndex はチャンク登録先のベクトルインデックスを表す
// UpsertChunk は冪等（同一 ChunkID の再登録は上書き）であること
type VectorIndex interface {
	UpsertChunk(ctx context.Context, chunk *Chunk) error
}
