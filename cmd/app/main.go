package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/devlog/internal"
	pkgconfig "github.com/starford/devlog/pkg/config"
)

type runFunc func(ctx context.Context, opts ...internal.Option) error

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func action(name string, run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s run error: %w", name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "devlog",
		Usage:  "Developer blog: post catalog, recent posts, categories, and post rendering",
		Action: action("serve", internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and content server",
				Action: action("serve", internal.Run),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the catalog as MCP tools over stdio",
				Action: action("mcp", internal.RunMCP),
			},
			{
				Name:   "browse",
				Usage:  "Read posts in the terminal",
				Action: action("browse", internal.RunBrowse),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
