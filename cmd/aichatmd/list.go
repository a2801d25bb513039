package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/aichatmd/internal/search"
	"github.com/Zuo-Peng/aichatmd/internal/tui"
)

func listCmd() *cobra.Command {
	var source, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse archived transcripts, most recently converted first",
		Long:  `Opens a TUI panel showing all archived transcripts (newest first). Type to search their content. When stdout is not a terminal a TSV listing is printed instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceUnix, err := parseSince(since)
			if err != nil {
				return err
			}

			db, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Source: source,
				Since:  sinceUnix,
				Limit:  limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, opts)
			}

			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
					r.TranscriptKey,
					colorizeSource(r.Source),
					humanize.Time(time.Unix(r.ConvertedAt, 0)),
					oneLine(r.Title),
					r.OutputPath,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by source (claude/chatgpt/deepseek)")
	cmd.Flags().StringVar(&since, "since", "", "Filter transcripts converted since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = default)")

	return cmd
}
