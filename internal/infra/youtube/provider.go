package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinford/tube-rag/internal/core/errs"
	"github.com/jinford/tube-rag/internal/core/ingestion"
)

// Provider は YouTube 用の ingestion.TranscriptSource 実装
// Data API での動画列挙と timedtext での字幕取得を束ねる
type Provider struct {
	client     *Client
	transcript *TranscriptClient
}

// NewProvider は新しい YouTube Provider を作成する
func NewProvider(client *Client, transcript *TranscriptClient) *Provider {
	return &Provider{
		client:     client,
		transcript: transcript,
	}
}

// ListChannelVideos はチャンネルの全動画を列挙する
func (p *Provider) ListChannelVideos(ctx context.Context, channelID string) ([]ingestion.VideoRef, error) {
	videos, err := p.client.ListChannelVideos(ctx, channelID)
	if err != nil {
		return nil, errs.NewUpstreamError(errs.OriginTranscriptSource, true, fmt.Errorf("failed to list channel videos: %w", err))
	}
	return videos, nil
}

// FetchTranscript は動画のトランスクリプトを取得する
// 字幕が存在しない場合は ingestion.ErrNoTranscript をそのまま返す
// （呼び出し側が skipped として扱えるようにラップしない）
func (p *Provider) FetchTranscript(ctx context.Context, video ingestion.VideoRef) (*ingestion.VideoTranscript, error) {
	// タイトル未解決の場合は Data API で補完する
	title := video.Title
	if title == "" {
		resolved, err := p.client.GetVideo(ctx, video.ID)
		if err != nil {
			return nil, errs.NewUpstreamError(errs.OriginTranscriptSource, true, fmt.Errorf("failed to resolve video title: %w", err))
		}
		title = resolved.Title
	}

	snippets, err := p.transcript.Fetch(ctx, video.ID)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoTranscript) {
			return nil, err
		}
		return nil, errs.NewUpstreamError(errs.OriginTranscriptSource, true, fmt.Errorf("failed to fetch transcript: %w", err))
	}

	return &ingestion.VideoTranscript{
		VideoID:  video.ID,
		Title:    title,
		Snippets: snippets,
	}, nil
}

// インターフェース実装の確認
var _ ingestion.TranscriptSource = (*Provider)(nil)
