package ask

import (
	"context"

	"github.com/samber/mo"
)

// AskParams は質問応答のパラメータを表す
type AskParams struct {
	Question string // ユーザーの質問文
	TopK     int    // 検索するチャンク数（デフォルト: 3）
}

// AskResult は質問応答の結果を表す
type AskResult struct {
	Answer  string     `json:"answer"`
	Sources []Citation `json:"sources"`
}

// Citation は回答の根拠となったソース情報を表す
// 永続化せず、常に検索結果のメタデータから再計算する
type Citation struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`   // 再生位置付きの動画URL
	Score float64 `json:"score"` // 表示用に小数第2位へ丸めた関連度
}

// ChunkMetadata は検索結果に付随するチャンクメタデータを表す
// StartTime はバケット下端0秒が正当な値のため Option で欠損と区別する
type ChunkMetadata struct {
	VideoID     string
	Title       string
	StartTime   mo.Option[int] // 秒
	TextExcerpt string
}

// RetrievedMatch はベクトルインデックスの検索結果1件を表す
type RetrievedMatch struct {
	ChunkID  string
	Score    float64 // 丸め前の生スコア。順序比較には必ずこちらを使う
	Metadata ChunkMetadata
}

// VectorIndex は質問応答が消費するベクトル検索インターフェース
// 結果はスコア降順・最大 k 件で返されること
type VectorIndex interface {
	Search(ctx context.Context, query string, k int) ([]*RetrievedMatch, error)
}

// LLMClient はLLM通信インターフェース
type LLMClient interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}
