package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jinford/tube-rag/internal/core/ingestion"
)

const (
	// DefaultTimedTextBaseURL は字幕取得エンドポイントのベースURL
	DefaultTimedTextBaseURL = "https://www.youtube.com/api/timedtext"

	// defaultTranscriptLang は取得する字幕の言語
	defaultTranscriptLang = "en"
)

// TranscriptClient は動画の字幕トラックを取得するクライアント
type TranscriptClient struct {
	baseURL    string
	lang       string
	httpClient *http.Client
}

// TranscriptOption は TranscriptClient 構築時のオプション
type TranscriptOption func(*TranscriptClient)

// WithTranscriptBaseURL は字幕エンドポイントのURLを差し替える（テスト用）
func WithTranscriptBaseURL(baseURL string) TranscriptOption {
	return func(c *TranscriptClient) {
		c.baseURL = baseURL
	}
}

// WithTranscriptLang は取得する字幕の言語を指定する
func WithTranscriptLang(lang string) TranscriptOption {
	return func(c *TranscriptClient) {
		c.lang = lang
	}
}

// WithTranscriptHTTPClient はHTTPクライアントを差し替える
func WithTranscriptHTTPClient(httpClient *http.Client) TranscriptOption {
	return func(c *TranscriptClient) {
		c.httpClient = httpClient
	}
}

// NewTranscriptClient は新しい TranscriptClient を作成する
func NewTranscriptClient(opts ...TranscriptOption) *TranscriptClient {
	client := &TranscriptClient{
		baseURL:    DefaultTimedTextBaseURL,
		lang:       defaultTranscriptLang,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// timedTextResponse は timedtext エンドポイントの json3 フォーマット
type timedTextResponse struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch は動画の字幕スニッペット一覧を取得する
// 字幕トラックが存在しない場合は ingestion.ErrNoTranscript を返す
func (c *TranscriptClient) Fetch(ctx context.Context, videoID string) ([]ingestion.TranscriptSnippet, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", c.lang)
	params.Set("fmt", "json3")
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: video %s", ingestion.ErrNoTranscript, videoID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext endpoint returned status %d for video %s", resp.StatusCode, videoID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript response: %w", err)
	}

	// 字幕トラックが無い動画は空ボディが返る
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: video %s", ingestion.ErrNoTranscript, videoID)
	}

	var timedText timedTextResponse
	if err := json.Unmarshal(body, &timedText); err != nil {
		return nil, fmt.Errorf("failed to decode transcript response: %w", err)
	}

	snippets := make([]ingestion.TranscriptSnippet, 0, len(timedText.Events))
	for _, event := range timedText.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
		if text == "" {
			continue
		}
		snippets = append(snippets, ingestion.TranscriptSnippet{
			Text:     text,
			Start:    float64(event.StartMs) / 1000.0,
			Duration: float64(event.DurationMs) / 1000.0,
		})
	}

	if len(snippets) == 0 {
		return nil, fmt.Errorf("%w: video %s", ingestion.ErrNoTranscript, videoID)
	}

	return snippets, nil
}
