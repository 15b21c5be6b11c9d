package ask

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultTopK はチャンク検索件数のデフォルト値
const DefaultTopK = 3

// AskService は質問応答のビジネスロジックを提供する
// リクエスト間で共有する可変状態を持たないため、並行呼び出しに安全
type AskService struct {
	index  VectorIndex
	llm    LLMClient
	logger *slog.Logger
}

type askServiceOptions struct {
	logger *slog.Logger
}

// AskServiceOption は AskService のオプション設定
type AskServiceOption func(*askServiceOptions)

// WithAskLogger は AskService にロガーを設定する
func WithAskLogger(logger *slog.Logger) AskServiceOption {
	return func(o *askServiceOptions) {
		o.logger = logger
	}
}

// NewAskService は新しいAskServiceを作成する
func NewAskService(index VectorIndex, llm LLMClient, opts ...AskServiceOption) *AskService {
	options := askServiceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &AskService{
		index:  index,
		llm:    llm,
		logger: options.logger,
	}
}

// Ask は質問に対してRAGベースで回答を生成する
func (s *AskService) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	if params.Question == "" {
		return nil, fmt.Errorf("question is required")
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.logger.Info("executing vector search",
		"question", params.Question,
		"topK", topK,
	)

	matches, err := s.index.Search(ctx, params.Question, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	contextStr, sources, err := AssembleContext(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble context: %w", err)
	}

	prompt := BuildAskPrompt(contextStr, params.Question)

	s.logger.Info("generating answer with LLM", "matches", len(matches))

	rawAnswer, err := s.llm.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	result, err := assembleAnswer(rawAnswer, sources)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ask completed successfully",
		"answerLength", len(result.Answer),
		"sources", len(result.Sources),
	)

	return result, nil
}

// assembleAnswer はLLMの生出力と引用リストから最終レスポンスを組み立てる
// トリム後に空の回答は ErrEmptyAnswer として呼び出し側へ返す
func assembleAnswer(rawAnswer string, sources []Citation) (*AskResult, error) {
	answer := strings.TrimSpace(rawAnswer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	return &AskResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}
