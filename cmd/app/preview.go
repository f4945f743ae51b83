package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Serve a live preview of a post that updates on every save",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Post file to preview"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port", Value: internal.DefaultPort},
			&cli.BoolFlag{Name: "open", Usage: "Open the viewer in a browser"},
			&cli.StringFlag{Name: "viewer-url", Usage: "Viewer page to open instead of the built-in one"},
			&cli.StringFlag{Name: "transport", Usage: "Push transport: sse, ws or both"},
			&cli.StringFlag{Name: "watch-mode", Usage: "Change detection: notify or poll"},
			&cli.DurationFlag{Name: "interval", Usage: "Coalescing interval for file changes"},
			&cli.StringFlag{Name: "media-url", Usage: "Absolute URL the post's directory is served under"},
			&cli.IntFlag{Name: "socket-port", Usage: "Serve the socket transport on its own port"},
		},
		Action: runPreview,
	}
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	banner("quill - Preview")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPreviewFlags(cmd, cfg)

	if err := cfg.ValidatePreview(); err != nil {
		return err
	}

	info("Starting HTTP server on port %d", cfg.App.HTTP.Port)

	onReady := func(r internal.ReadyInfo) {
		info("HTTP server listening on %s", r.URL)
		if r.SocketURL != "" {
			info("Socket transport listening on %s", r.SocketURL)
		}
		info("Viewer: %s", r.ViewerURL)
		if cfg.Preview.Open {
			if err := browser.OpenURL(r.ViewerURL); err != nil {
				slog.Warn("open browser failed", slog.String("error", err.Error()))
			}
		}
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithOnReady(onReady)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// applyPreviewFlags lets command-line values override the config file.
func applyPreviewFlags(cmd *cli.Command, cfg *internal.Config) {
	if f := cmd.String("file"); f != "" {
		cfg.Preview.File = f
	} else if arg := cmd.Args().First(); arg != "" {
		cfg.Preview.File = arg
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("open") {
		cfg.Preview.Open = cmd.Bool("open")
	}
	if cmd.IsSet("viewer-url") {
		cfg.Preview.ViewerURL = cmd.String("viewer-url")
	}
	if cmd.IsSet("transport") {
		cfg.Preview.Transport = cmd.String("transport")
	}
	if cmd.IsSet("watch-mode") {
		cfg.Preview.WatchMode = cmd.String("watch-mode")
	}
	if cmd.IsSet("interval") {
		cfg.Preview.Interval = cmd.Duration("interval")
	}
	if cmd.IsSet("media-url") {
		cfg.Preview.MediaURL = cmd.String("media-url")
	}
	if cmd.IsSet("socket-port") {
		cfg.Preview.SocketPort = int(cmd.Int("socket-port"))
	}
}
