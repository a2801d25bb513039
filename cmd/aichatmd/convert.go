package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Zuo-Peng/aichatmd/internal/config"
	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/parse"
	"github.com/Zuo-Peng/aichatmd/internal/scan"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

var errBatchFailed = errors.New("some conversions failed")

type convertFlags struct {
	source, aiName, userName, title, timezone string
	baseDir, inputFile, outputFile            string
	inline, reasoning, archive                bool
	stdout, force                             bool
}

// overrides keeps only the flags the user actually set.
func (f *convertFlags) overrides(cmd *cobra.Command) config.Overrides {
	var ov config.Overrides
	fl := cmd.Flags()
	str := func(name string, v *string) *string {
		if fl.Changed(name) {
			return v
		}
		return nil
	}
	boolean := func(name string, v *bool) *bool {
		if fl.Changed(name) {
			return v
		}
		return nil
	}
	ov.ChatSource = str("chat-source", &f.source)
	ov.AIName = str("ai-name", &f.aiName)
	ov.UserName = str("user-name", &f.userName)
	ov.Title = str("title", &f.title)
	ov.Timezone = str("timezone", &f.timezone)
	ov.BaseDir = str("base-dir", &f.baseDir)
	ov.InputFile = str("input-file", &f.inputFile)
	ov.OutputFile = str("output-file", &f.outputFile)
	ov.InlineOutput = boolean("inline-output", &f.inline)
	ov.Reasoning = boolean("reasoning", &f.reasoning)
	ov.Archive = boolean("archive", &f.archive)
	return ov
}

func convertCmd() *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "aichatmd [flags] [path...]",
		Short: "Convert Claude, ChatGPT and DeepSeek chat exports to Markdown",
		Long: `Convert a chat export to Markdown.

With no paths the configured input file is converted. Paths may be files or
directories; directories are searched for .json and .txt exports, and every
export is converted next to its input.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f.overrides(cmd))
			if err != nil {
				return err
			}
			if len(args) == 0 && cfg.Source == "" && cfg.InputFile == "" {
				return cmd.Help()
			}
			logger := newLogger()

			var db *index.DB
			if cfg.Archive && !f.stdout {
				db, err = index.OpenDB(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()
			}

			if len(args) > 0 {
				return convertBatch(cfg, db, args, f.force, logger)
			}
			return convertSingle(cfg, db, f.stdout, logger)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.source, "chat-source", "s", "", "Chat source (claude, chatgpt, deepseek)")
	fl.StringVarP(&f.aiName, "ai-name", "a", "", "Name for the AI assistant")
	fl.StringVarP(&f.userName, "user-name", "u", "", "Name for the user")
	fl.StringVarP(&f.title, "title", "t", "", "Title for the chat")
	fl.StringVarP(&f.timezone, "timezone", "z", "", "IANA timezone for timestamps")
	fl.StringVarP(&f.baseDir, "base-dir", "d", "", "Base directory for input/output files")
	fl.BoolVarP(&f.inline, "inline-output", "p", true, "Save output in the same directory as the input")
	fl.StringVarP(&f.inputFile, "input-file", "i", "", "Input chat file (.json/.txt inferred)")
	fl.StringVarP(&f.outputFile, "output-file", "o", "", "Output markdown file")
	fl.BoolVarP(&f.reasoning, "reasoning", "r", false, "Include thinking / reasoning content")
	fl.BoolVar(&f.archive, "archive", true, "Record conversions in the searchable archive")
	fl.BoolVar(&f.stdout, "stdout", false, "Print the Markdown instead of writing a file")
	fl.BoolVar(&f.force, "force", false, "Convert again even if the input is unchanged")

	return cmd
}

func convertSingle(cfg *config.Config, db *index.DB, stdout bool, logger *log.Logger) error {
	if err := cfg.Validate(true); err != nil {
		return err
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}

	opts := cfg.RenderOptions()
	opts.Logger = logger
	if !stdout && term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = newProgressBar(os.Stderr)
	}

	if stdout {
		doc, err := renderFile(paths.Input, opts)
		if err != nil {
			return err
		}
		fmt.Print(doc.Markdown)
		return nil
	}

	fmt.Fprintf(os.Stderr, "Input: %s\n", paths.Input)
	fmt.Fprintf(os.Stderr, "Output: %s\n", paths.Output)
	if err := convertFile(db, cfg.Source, paths.Input, paths.Output, opts); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Done.")
	return nil
}

func convertBatch(cfg *config.Config, db *index.DB, roots []string, force bool, logger *log.Logger) error {
	if err := cfg.Validate(false); err != nil {
		return err
	}

	files, err := scan.Scan(roots)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var (
		mu    sync.Mutex
		stats = index.Stats{Scanned: len(files)}
	)
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, fi := range files {
		fi := fi
		g.Go(func() error {
			out, err := cfg.OutputFor(fi.Path)
			if err != nil {
				count(&stats.Errors)
				logger.Printf("WARN: %s: %v", fi.Path, err)
				return nil
			}
			opts := cfg.RenderOptions()
			opts.Logger = logger
			if db != nil && !force && fileExists(out) {
				needs, err := index.NeedsUpdate(db, index.Key(fi.Path), fi.Mtime, fi.Size, index.OptionsHash(opts))
				if err == nil && !needs {
					count(&stats.Skipped)
					return nil
				}
			}

			if err := convertFile(db, cfg.Source, fi.Path, out, opts); err != nil {
				if errors.Is(err, errWrongSource) {
					count(&stats.Skipped)
					logger.Printf("skip %s: %v", fi.Path, err)
					return nil
				}
				count(&stats.Errors)
				logger.Printf("WARN: convert %s: %v", fi.Path, err)
				return nil
			}
			count(&stats.Converted)
			fmt.Fprintf(os.Stderr, "  %s -> %s\n", fi.Path, out)
			return nil
		})
	}
	_ = g.Wait()

	if db != nil {
		pruned, err := index.Prune(db)
		if err != nil {
			return fmt.Errorf("prune: %w", err)
		}
		stats.Pruned = pruned
	}

	fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
	if stats.Errors > 0 {
		return fmt.Errorf("%w: %d of %d", errBatchFailed, stats.Errors, stats.Scanned)
	}
	return nil
}

var errWrongSource = errors.New("export looks like a different chat source")

// renderFile reads and renders one export without writing anything.
func renderFile(path string, opts transcript.Options) (*transcript.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !scan.Matches(data, opts.Source) {
		return nil, fmt.Errorf("%w: %s", errWrongSource, scan.Sniff(data))
	}
	t, err := parse.Decode(opts.Source, data)
	if err != nil {
		return nil, err
	}
	return transcript.Render(t, opts)
}

// convertFile renders in to out and archives the result when db is set.
// Nothing is written when rendering fails.
func convertFile(db *index.DB, source parse.Source, in, out string, opts transcript.Options) error {
	opts.Source = source
	doc, err := renderFile(in, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, []byte(doc.Markdown), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if db == nil {
		return nil
	}
	info, err := os.Stat(in)
	if err != nil {
		return err
	}
	if err := index.Record(db, index.Entry{
		Source:      source,
		Input:       in,
		Output:      out,
		Mtime:       info.ModTime().Unix(),
		Size:        info.Size(),
		OptionsHash: index.OptionsHash(opts),
		Doc:         doc,
	}); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
