package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/aichatmd/internal/config"
	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/scan"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: show the effective config, input, archive and FTS5 state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, config.Overrides{})
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			source := string(cfg.Source)
			if source == "" {
				source = "(not set)"
			}
			fmt.Printf("  Chat source: %s\n", source)
			fmt.Printf("  AI name:     %s\n", cfg.AIName)
			fmt.Printf("  User name:   %s\n", cfg.UserName)
			tf := transcript.NewTimeFormatter(cfg.Timezone, transcript.EncodingUnix, newLogger())
			fmt.Printf("  Timezone:    %s (now %s)\n", tf.Location(), time.Now().In(tf.Location()).Format(transcript.DisplayLayout))
			fmt.Printf("  Reasoning:   %v\n", cfg.Reasoning)
			checkDir("Base dir", cfg.BaseDir)

			fmt.Println("\n=== Input ===")
			if cfg.InputFile == "" {
				fmt.Println("  Input file: (not set)")
			} else if paths, err := cfg.ResolvePaths(); err != nil {
				fmt.Printf("  Input file: %s (%v)\n", cfg.InputFile, err)
			} else {
				fmt.Printf("  Input:  %s\n", paths.Input)
				fmt.Printf("  Output: %s\n", paths.Output)
				if data, err := os.ReadFile(paths.Input); err == nil {
					guess := string(scan.Sniff(data))
					if guess == "" {
						guess = "unknown"
					}
					fmt.Printf("  Looks like: %s (%s)\n", guess, humanize.Bytes(uint64(len(data))))
				}
			}

			fmt.Println("\n=== Archive ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (convert something first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			transcripts, err := db.TranscriptCount()
			if err != nil {
				return fmt.Errorf("count transcripts: %w", err)
			}
			blocks, err := db.BlockCount()
			if err != nil {
				return fmt.Errorf("count blocks: %w", err)
			}
			fmt.Printf("  Transcripts: %d\n", transcripts)
			fmt.Printf("  Blocks:      %d\n", blocks)

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM blocks_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == blocks {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (blocks=%d, fts=%d)\n", blocks, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				fmt.Printf("\n=== DB Size: %s ===\n", humanize.Bytes(uint64(info.Size())))
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
