package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve post tools to LLM clients over MCP (stdio)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "Blog root"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("root") {
				cfg.Blog.Root = cmd.String("root")
			}
			return internal.RunMCP(ctx, internal.WithConfig(cfg))
		},
	}
}
