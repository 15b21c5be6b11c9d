// Package errs はコア全体で共有するエラー型を提供する
package errs

import "fmt"

// 外部コラボレータの識別子
const (
	OriginTranscriptSource = "transcript-source"
	OriginVectorIndex      = "vector-index"
	OriginLLM              = "llm"
)

// UpstreamError は外部コラボレータ呼び出しの失敗を包むエラー
// Retryable は呼び出し側がリトライを判断するためのヒント
type UpstreamError struct {
	Origin    string // 発生元（transcript-source / vector-index / llm）
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %s", e.Origin, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError は新しい UpstreamError を作成する
func NewUpstreamError(origin string, retryable bool, err error) *UpstreamError {
	return &UpstreamError{
		Origin:    origin,
		Retryable: retryable,
		Err:       err,
	}
}
