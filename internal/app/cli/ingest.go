package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"
	"github.com/urfave/cli/v3"

	"github.com/jinford/tube-rag/internal/core/ingestion"
)

// IndexInitAction はベクトルインデックスのスキーマ作成コマンドのアクション
func IndexInitAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("インデックススキーマを作成します")

	if err := appCtx.Container.ChunkIndex.EnsureSchema(ctx); err != nil {
		slog.Error("スキーマ作成に失敗しました", "error", err)
		return err
	}

	fmt.Println("インデックススキーマを作成しました")
	return nil
}

// IndexYouTubeAction はYouTubeトランスクリプトのインデックス化コマンドのアクション
func IndexYouTubeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	channelID := cmd.String("channel")
	videoIDs := cmd.StringSlice("video")
	chunkDuration := cmd.Int("chunk-duration")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// フラグ未指定なら設定値を使用
	if channelID == "" && len(videoIDs) == 0 {
		channelID = appCtx.Config.YouTube.ChannelID
	}
	if chunkDuration <= 0 {
		chunkDuration = appCtx.Config.Ingestion.ChunkDuration
	}

	params := ingestion.IngestParams{
		VideoIDs:      videoIDs,
		ChunkDuration: chunkDuration,
	}
	if channelID != "" {
		params.ChannelID = mo.Some(channelID)
	}

	slog.Info("インデックス化を開始",
		"channel", channelID,
		"videos", len(videoIDs),
		"chunkDuration", chunkDuration,
	)

	report, err := appCtx.Container.IngestService.Ingest(ctx, params)
	if err != nil {
		slog.Error("インデックス化に失敗しました", "error", err)
		return err
	}

	printIngestReport(report)

	slog.Info("インデックス化が完了しました",
		"runID", report.RunID,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return nil
}

// printIngestReport は取り込み結果のレポートを出力する
func printIngestReport(report *ingestion.IngestReport) {
	fmt.Printf("取り込み結果 (run: %s)\n", report.RunID)
	fmt.Printf("  成功: %d / スキップ: %d / 失敗: %d\n", report.Succeeded, report.Skipped, report.Failed)

	for _, item := range report.Items {
		switch item.Status {
		case ingestion.StatusSucceeded:
			fmt.Printf("  [OK]   %s (%s) チャンク数: %d\n", item.VideoID, item.Title, item.Chunks)
		case ingestion.StatusSkipped:
			fmt.Printf("  [SKIP] %s (%s) 理由: %s\n", item.VideoID, item.Title, item.Reason)
		case ingestion.StatusFailed:
			fmt.Printf("  [FAIL] %s (%s) 理由: %s\n", item.VideoID, item.Title, item.Reason)
		}
	}
}
