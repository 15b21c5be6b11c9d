package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/jinford/tube-rag/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "tube-rag",
		Usage: "YouTubeトランスクリプトを知識源とする質問応答システム",
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "インデックス済みトランスクリプトに基づいて質問に回答",
				ArgsUsage: "<質問文>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "検索で取得するチャンク数",
					},
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "回答の引用元を表示",
					},
				},
				Action: appcli.AskAction,
			},
			{
				Name:  "index",
				Usage: "インデックス管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "init",
						Usage: "ベクトルインデックスのスキーマを作成",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: appcli.IndexInitAction,
					},
					{
						Name:  "youtube",
						Usage: "YouTubeトランスクリプトをインデックス化",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "channel",
								Usage: "インデックス化するチャンネルID",
							},
							&cli.StringSliceFlag{
								Name:  "video",
								Usage: "インデックス化する動画ID（複数指定可）",
							},
							&cli.IntFlag{
								Name:  "chunk-duration",
								Usage: "チャンク分割の時間幅（秒）",
							},
						},
						Action: appcli.IndexYouTubeAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
