package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

const (
	// DefaultChunkDuration はデフォルトのチャンク長（秒）
	DefaultChunkDuration = 30

	// DefaultUpsertWorkerCount はチャンク登録ワーカー数のデフォルト値
	// 登録は ChunkID で一意にアドレスされるため順序に依存しない
	DefaultUpsertWorkerCount = 4
)

// IngestParams はインジェスト処理のパラメータを表す
type IngestParams struct {
	ChannelID     mo.Option[string] // チャンネル全体をインデックス化する場合に指定
	VideoIDs      []string          // 個別動画をインデックス化する場合に指定
	ChunkDuration int               // チャンク長（秒）。0以下の場合はデフォルト値
}

// IngestStatus は動画単位の処理結果を表す
type IngestStatus string

const (
	StatusSucceeded IngestStatus = "succeeded"
	StatusSkipped   IngestStatus = "skipped"
	StatusFailed    IngestStatus = "failed"
)

// IngestItem は動画単位の処理結果明細を表す
type IngestItem struct {
	VideoID string
	Title   string
	Status  IngestStatus
	Chunks  int
	Reason  string // skipped / failed の場合の理由
}

// IngestReport はインジェスト実行全体の結果を表す
type IngestReport struct {
	RunID     uuid.UUID
	Succeeded int
	Skipped   int
	Failed    int
	Items     []IngestItem
}

// IngestService はトランスクリプトのインジェストユースケースを提供する
type IngestService struct {
	source      TranscriptSource
	index       VectorIndex
	workerCount int
	logger      *slog.Logger
}

type ingestServiceOptions struct {
	workerCount int
	logger      *slog.Logger
}

// IngestServiceOption は IngestService のオプション設定
type IngestServiceOption func(*ingestServiceOptions)

// WithIngestLogger は IngestService にロガーを設定する
func WithIngestLogger(logger *slog.Logger) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.logger = logger
	}
}

// WithUpsertWorkerCount はチャンク登録ワーカー数を上書きする
func WithUpsertWorkerCount(n int) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.workerCount = n
	}
}

// NewIngestService は新しいIngestServiceを作成する
func NewIngestService(source TranscriptSource, index VectorIndex, opts ...IngestServiceOption) *IngestService {
	options := ingestServiceOptions{
		workerCount: DefaultUpsertWorkerCount,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.workerCount <= 0 {
		options.workerCount = DefaultUpsertWorkerCount
	}

	return &IngestService{
		source:      source,
		index:       index,
		workerCount: options.workerCount,
		logger:      options.logger,
	}
}

// IngestTranscript は1動画分のトランスクリプトを分割してインデックスに登録する
// 登録は冪等なため、同一動画の再実行・多重実行は安全
func (s *IngestService) IngestTranscript(ctx context.Context, transcript *VideoTranscript, chunkDuration int) (int, error) {
	if chunkDuration <= 0 {
		chunkDuration = DefaultChunkDuration
	}

	chunks, err := Segment(transcript, chunkDuration)
	if err != nil {
		return 0, fmt.Errorf("トランスクリプトの分割に失敗: %w", err)
	}

	if len(chunks) == 0 {
		s.logger.Info("チャンクなし", "videoID", transcript.VideoID)
		return 0, nil
	}

	if err := s.upsertChunks(ctx, chunks); err != nil {
		return 0, err
	}

	s.logger.Info("動画のインデックス化が完了",
		"videoID", transcript.VideoID,
		"chunks", len(chunks),
	)

	return len(chunks), nil
}

// upsertChunks はチャンクを並行してベクトルインデックスに登録する
func (s *IngestService) upsertChunks(ctx context.Context, chunks []*Chunk) error {
	chunkChan := make(chan *Chunk, len(chunks))
	for _, chunk := range chunks {
		chunkChan <- chunk
	}
	close(chunkChan)

	workers := s.workerCount
	if workers > len(chunks) {
		workers = len(chunks)
	}

	errChan := make(chan error, len(chunks))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkChan {
				select {
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				default:
				}
				if err := s.index.UpsertChunk(ctx, chunk); err != nil {
					errChan <- fmt.Errorf("チャンクの登録に失敗 (%s): %w", chunk.ChunkID, err)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Ingest は指定されたチャンネルまたは動画群をインデックス化する
// 動画単位の失敗（トランスクリプトなし等）はバッチ全体を中断せず、
// 明細 IngestItem として報告する
func (s *IngestService) Ingest(ctx context.Context, params IngestParams) (*IngestReport, error) {
	videos, err := s.resolveVideos(ctx, params)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{
		RunID: uuid.New(),
		Items: make([]IngestItem, 0, len(videos)),
	}

	s.logger.Info("インジェストを開始",
		"runID", report.RunID,
		"videos", len(videos),
		"chunkDuration", params.ChunkDuration,
	)

	for _, video := range videos {
		item := s.ingestVideo(ctx, video, params.ChunkDuration)
		switch item.Status {
		case StatusSucceeded:
			report.Succeeded++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
		report.Items = append(report.Items, item)
	}

	s.logger.Info("インジェストが完了",
		"runID", report.RunID,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	return report, nil
}

// ingestVideo は1動画を処理し、結果を明細として返す
func (s *IngestService) ingestVideo(ctx context.Context, video VideoRef, chunkDuration int) IngestItem {
	transcript, err := s.source.FetchTranscript(ctx, video)
	if err != nil {
		if errors.Is(err, ErrNoTranscript) {
			s.logger.Info("トランスクリプトなし。スキップ", "videoID", video.ID)
			return IngestItem{
				VideoID: video.ID,
				Title:   video.Title,
				Status:  StatusSkipped,
				Reason:  ErrNoTranscript.Error(),
			}
		}
		s.logger.Error("トランスクリプトの取得に失敗", "videoID", video.ID, "error", err)
		return IngestItem{
			VideoID: video.ID,
			Title:   video.Title,
			Status:  StatusFailed,
			Reason:  err.Error(),
		}
	}

	count, err := s.IngestTranscript(ctx, transcript, chunkDuration)
	if err != nil {
		s.logger.Error("動画のインデックス化に失敗", "videoID", video.ID, "error", err)
		return IngestItem{
			VideoID: video.ID,
			Title:   transcript.Title,
			Status:  StatusFailed,
			Reason:  err.Error(),
		}
	}

	return IngestItem{
		VideoID: video.ID,
		Title:   transcript.Title,
		Status:  StatusSucceeded,
		Chunks:  count,
	}
}

// resolveVideos はパラメータから処理対象の動画リストを決定する
func (s *IngestService) resolveVideos(ctx context.Context, params IngestParams) ([]VideoRef, error) {
	if channelID, ok := params.ChannelID.Get(); ok {
		if len(params.VideoIDs) > 0 {
			return nil, fmt.Errorf("channelID と videoIDs は同時に指定できません")
		}
		videos, err := s.source.ListChannelVideos(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("チャンネル動画の列挙に失敗: %w", err)
		}
		return videos, nil
	}

	if len(params.VideoIDs) == 0 {
		return nil, fmt.Errorf("channelID または videoIDs のいずれかが必要です")
	}

	videos := make([]VideoRef, 0, len(params.VideoIDs))
	for _, id := range params.VideoIDs {
		videos = append(videos, VideoRef{ID: id})
	}
	return videos, nil
}
