package ask

import (
	"errors"
	"fmt"
)

// ErrEmptyAnswer はLLMの出力がトリム後に空だった場合に返されます
var ErrEmptyAnswer = errors.New("generated answer is empty")

// MalformedMatchError は検索結果のメタデータに必須フィールドが
// 欠けている場合のエラー。欠損はデフォルト値で補完せずエラーとする
type MalformedMatchError struct {
	ChunkID string
	Field   string
}

func (e *MalformedMatchError) Error() string {
	return fmt.Sprintf("malformed match %s: missing %s", e.ChunkID, e.Field)
}

// NewMalformedMatchError は新しい MalformedMatchError を作成する
func NewMalformedMatchError(chunkID, field string) *MalformedMatchError {
	return &MalformedMatchError{ChunkID: chunkID, Field: field}
}
