package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/checksum"
)

func revisionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "revisions",
		Usage:     "List the recorded revisions of a previewed post",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of revisions", Value: 20},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			revs, err := internal.ListRevisions(ctx, cfg, cmd.Args().First(), int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			if len(revs) == 0 {
				fmt.Println(mutedStyle.Render("no revisions recorded"))
				return nil
			}
			for _, r := range revs {
				fmt.Printf("%s  %s  %-40s %8s  %s\n",
					mutedStyle.Render(fmt.Sprintf("#%d", r.ID)),
					checksum.Short(r.Checksum),
					r.Title,
					humanize.Bytes(uint64(r.Bytes)),
					mutedStyle.Render(humanize.Time(r.CreatedAt)))
			}
			return nil
		},
	}
}
