package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/aichatmd/internal/config"
	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/preview"
	"github.com/Zuo-Peng/aichatmd/internal/search"
	"github.com/Zuo-Peng/aichatmd/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorMagenta = "\033[1;35m"
	sColorDim     = "\033[2m"
)

func colorizeSource(source string) string {
	switch source {
	case "claude":
		return sColorBlue + source + sColorReset
	case "chatgpt":
		return sColorGreen + source + sColorReset
	case "deepseek":
		return sColorMagenta + source + sColorReset
	default:
		return source
	}
}

func colorizeSnippet(snippet string) string {
	return strings.NewReplacer(">>>", sColorBoldRed, "<<<", sColorReset).Replace(snippet)
}

func oneLine(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

// parseSince turns YYYY-MM-DD into unix seconds.
func parseSince(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid --since %q: want YYYY-MM-DD", s)
	}
	return t.Unix(), nil
}

func openArchive(cmd *cobra.Command) (*index.DB, error) {
	cfg, err := loadConfig(cmd, config.Overrides{})
	if err != nil {
		return nil, err
	}
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func searchCmd() *cobra.Command {
	var source, speaker, kind, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across archived transcripts",
		Long: `Search archived transcripts using FTS5. On a terminal an interactive
browser opens; otherwise output is TSV for fzf integration:
  transcriptKey, blockId, lastMessage, source, title, speaker, snippet

Example shell function:
  chatf() {
    aichatmd search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'aichatmd search --preview {1} --hit {2} --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(aichatmd open {1} --hit {2})'
  }`,
		Args: cobra.ArbitraryArgs,
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

			query := strings.Join(args, " ")
			opts := search.Options{
				Source:  source,
				Speaker: speaker,
				Kind:    kind,
				Since:   sinceUnix,
				Limit:   limit,
			}

			if key, _ := cmd.Flags().GetString("preview"); key != "" {
				hit, _ := cmd.Flags().GetInt("hit")
				out, _, err := preview.Transcript(db, key, preview.Options{
					HitBlockID: hit,
					Context:    5,
					Query:      query,
				})
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			// interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, query, opts)
			}
			if query == "" {
				return fmt.Errorf("search: query required")
			}

			opts.Query = query
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields (key, blockID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.TranscriptKey,
					r.BlockID,
					sColorDim, r.LastMessage, sColorReset,
					colorizeSource(r.Source),
					oneLine(r.Title),
					r.Speaker,
					colorizeSnippet(oneLine(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by source (claude/chatgpt/deepseek)")
	cmd.Flags().StringVar(&speaker, "speaker", "", "Filter by speaker display name")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by block kind (text/thinking)")
	cmd.Flags().StringVar(&since, "since", "", "Filter transcripts converted since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().String("preview", "", "Print a preview of the transcript with this key and exit")
	cmd.Flags().Int("hit", -1, "Block ID to highlight in --preview")

	return cmd
}
