package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	coreask "github.com/jinford/tube-rag/internal/core/ask"
)

// AskAction は質問応答コマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	// フラグの取得
	topK := cmd.Int("top-k")
	showSources := cmd.Bool("show-sources")
	envFile := cmd.String("env")

	// 質問文の取得
	question := cmd.Args().First()
	if question == "" {
		return fmt.Errorf("質問文を指定してください")
	}

	slog.Info("質問応答を開始",
		"question", question,
		"topK", topK,
		"showSources", showSources,
	)

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// フラグ未指定なら設定値を使用
	if topK <= 0 {
		topK = appCtx.Config.Ask.TopK
	}

	result, err := appCtx.Container.AskService.Ask(ctx, coreask.AskParams{
		Question: question,
		TopK:     topK,
	})
	if err != nil {
		slog.Error("質問応答に失敗しました", "error", err)
		return err
	}

	// 結果出力
	fmt.Println(result.Answer)

	// --show-sourcesフラグが指定されている場合、引用元も出力
	if showSources && len(result.Sources) > 0 {
		fmt.Println("\n--- 引用元 ---")
		for i, source := range result.Sources {
			fmt.Printf("[%d] %s\n    %s (スコア: %.2f)\n",
				i+1,
				source.Title,
				source.URL,
				source.Score,
			)
		}
	}

	slog.Info("質問応答が完了しました", "sources", len(result.Sources))
	return nil
}
