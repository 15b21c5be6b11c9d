package ask

import (
	"fmt"
	"math"
	"strings"
)

// contextSeparator はコンテキスト内で各抜粋を区切るセパレータ
// 生成モデルに渡すプロンプト内で出典同士が混ざらないよう視覚的に分離する
const contextSeparator = "\n\n---\n\n"

// watchURLFormat は再生位置付きの動画URLフォーマット
const watchURLFormat = "https://www.youtube.com/watch?v=%s&t=%ds"

// AssembleContext は検索結果からプロンプト用コンテキストと引用リストを構築する
//
// 入力順（スコア降順でインデックスから供給される）をそのまま保持し、
// 並べ替えは行わない。同一動画・同一時刻の重複もそのまま引用に含める。
// メタデータに必須フィールドが欠けている場合は MalformedMatchError を返す
func AssembleContext(matches []*RetrievedMatch) (string, []Citation, error) {
	contextParts := make([]string, 0, len(matches))
	sources := make([]Citation, 0, len(matches))

	for _, match := range matches {
		if err := validateMatch(match); err != nil {
			return "", nil, err
		}

		contextParts = append(contextParts, match.Metadata.TextExcerpt)
		sources = append(sources, Citation{
			Title: match.Metadata.Title,
			URL:   fmt.Sprintf(watchURLFormat, match.Metadata.VideoID, match.Metadata.StartTime.MustGet()),
			Score: roundScore(match.Score),
		})
	}

	return strings.Join(contextParts, contextSeparator), sources, nil
}

// validateMatch はメタデータの必須フィールドを検証する
func validateMatch(match *RetrievedMatch) error {
	switch {
	case match.Metadata.TextExcerpt == "":
		return NewMalformedMatchError(match.ChunkID, "text_excerpt")
	case match.Metadata.Title == "":
		return NewMalformedMatchError(match.ChunkID, "title")
	case match.Metadata.VideoID == "":
		return NewMalformedMatchError(match.ChunkID, "video_id")
	case match.Metadata.StartTime.IsAbsent():
		return NewMalformedMatchError(match.ChunkID, "start_time")
	}
	return nil
}

// roundScore はスコアを表示用に小数第2位へ丸める
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
