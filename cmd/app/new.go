package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/scaffold"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Create a new post; asks for anything not given as a flag",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "Blog root containing authors.json and categories.json"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Post title"},
			&cli.StringFlag{Name: "category", Usage: "Post category"},
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "Post author"},
			&cli.StringFlag{Name: "co-authors", Usage: "Comma separated co-authors"},
			&cli.StringFlag{Name: "excerpt", Usage: "Short summary"},
		},
		Action: runNew,
	}
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	banner("quill - New Post")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("root") {
		cfg.Blog.Root = cmd.String("root")
	}

	preset := scaffold.Answers{
		Title:    cmd.String("title"),
		Category: cmd.String("category"),
		Author:   cmd.String("author"),
		Excerpt:  cmd.String("excerpt"),
	}
	if co := cmd.String("co-authors"); co != "" {
		preset.CoAuthors = strings.Split(co, ",")
	}

	path, err := internal.CreatePost(ctx, cfg, scaffold.HuhPrompter{}, preset)
	if err != nil {
		return err
	}
	info("A new post was created: %s", path)
	return nil
}
