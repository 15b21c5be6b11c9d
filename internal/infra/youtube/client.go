package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jinford/tube-rag/internal/core/ingestion"
)

const (
	// DefaultDataAPIBaseURL はYouTube Data API v3のベースURL
	DefaultDataAPIBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultTimeout はHTTPリクエストのデフォルトタイムアウト
	DefaultTimeout = 30 * time.Second

	// maxPlaylistPageSize はplaylistItems.listの1ページあたり最大件数
	maxPlaylistPageSize = 50
)

var (
	// ErrAPIKeyNotSet はYouTube APIキーが未設定の場合に返されます
	ErrAPIKeyNotSet = errors.New("youtube api key is not set")

	// ErrChannelNotFound は指定されたチャンネルが存在しない場合に返されます
	ErrChannelNotFound = errors.New("channel not found")

	// ErrVideoNotFound は指定された動画が存在しない場合に返されます
	ErrVideoNotFound = errors.New("video not found")
)

// Client はYouTube Data API v3のクライアント
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption は Client 構築時のオプション
type ClientOption func(*Client)

// WithBaseURL はAPIのベースURLを差し替える（テスト用）
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient は新しい YouTube Data API クライアントを作成する
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	client := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultDataAPIBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// channelListResponse は channels.list のレスポンス
type channelListResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// playlistItemsResponse は playlistItems.list のレスポンス
type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string `json:"title"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

// videoListResponse は videos.list のレスポンス
type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// GetUploadsPlaylistID はチャンネルのアップロード済み動画プレイリストIDを取得する
func (c *Client) GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// ListChannelVideos はチャンネルの全動画をページネーションを辿って列挙する
func (c *Client) ListChannelVideos(ctx context.Context, channelID string) ([]ingestion.VideoRef, error) {
	playlistID, err := c.GetUploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var videos []ingestion.VideoRef
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", fmt.Sprintf("%d", maxPlaylistPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsResponse
		if err := c.get(ctx, "/playlistItems", params, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			videos = append(videos, ingestion.VideoRef{
				ID:    item.Snippet.ResourceID.VideoID,
				Title: item.Snippet.Title,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return videos, nil
}

// GetVideo は動画IDからタイトルを取得する
func (c *Client) GetVideo(ctx context.Context, videoID string) (ingestion.VideoRef, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)

	var resp videoListResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return ingestion.VideoRef{}, err
	}
	if len(resp.Items) == 0 {
		return ingestion.VideoRef{}, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	return ingestion.VideoRef{
		ID:    resp.Items[0].ID,
		Title: resp.Items[0].Snippet.Title,
	}, nil
}

// get はData APIのGETリクエストを実行し、レスポンスをデコードする
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call youtube data api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube data api returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube data api response: %w", err)
	}

	return nil
}
