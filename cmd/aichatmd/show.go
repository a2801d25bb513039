package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/aichatmd/internal/config"
	"github.com/Zuo-Peng/aichatmd/internal/index"
)

func showCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <file.md | transcript key>",
		Short: "Render a converted transcript in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				p, err := outputPathFor(cmd, path)
				if err != nil {
					return err
				}
				path = p
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				_, err := os.Stdout.Write(data)
				return err
			}

			if width <= 0 {
				width = 80
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
					width = w
				}
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("markdown renderer: %w", err)
			}
			out, err := r.Render(string(data))
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = terminal width)")

	return cmd
}

// outputPathFor looks up the Markdown file archived under key.
func outputPathFor(cmd *cobra.Command, key string) (string, error) {
	cfg, err := loadConfig(cmd, config.Overrides{})
	if err != nil {
		return "", err
	}
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	t, err := db.GetTranscriptByKey(key)
	if err != nil {
		return "", fmt.Errorf("get transcript: %w", err)
	}
	if t == nil {
		return "", fmt.Errorf("no such file or transcript: %s", key)
	}
	return t.OutputPath, nil
}
