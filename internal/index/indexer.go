package index

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

// keySpace namespaces archive keys so the same input path always maps to
// the same key.
var keySpace = uuid.MustParse("6f1c3f0e-8f57-4f7a-9d87-3c2f0b6a51d4")

// Key returns the archive key of an input file.
func Key(inputPath string) string {
	if abs, err := filepath.Abs(inputPath); err == nil {
		inputPath = abs
	}
	return uuid.NewSHA1(keySpace, []byte(inputPath)).String()
}

type Stats struct {
	Scanned   int
	Converted int
	Skipped   int
	Pruned    int
	Errors    int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d converted=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Converted, s.Skipped, s.Pruned, s.Errors)
}

// Entry is one finished conversion.
type Entry struct {
	Source      parse.Source
	Input       string
	Output      string
	Mtime       int64
	Size        int64
	OptionsHash string
	Doc         *transcript.Document
}

// OptionsHash fingerprints every setting that changes the rendered
// Markdown, so a config change forces a new conversion.
func OptionsHash(opts transcript.Options) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00%s\x00%s\x00%s",
		opts.Source, opts.Timezone, opts.Reasoning, opts.Title, opts.UserName, opts.AIName)
	return hex.EncodeToString(h.Sum(nil))
}

// NeedsUpdate reports whether the input or the render settings changed
// since the transcript was archived.
func NeedsUpdate(db *DB, key string, mtime, size int64, optionsHash string) (bool, error) {
	info, err := db.GetFileInfo(key)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new transcript
	}
	return info.Mtime != mtime || info.Size != size || info.OptionsHash != optionsHash, nil
}

// Record replaces the archived copy of e's transcript.
func Record(db *DB, e Entry) error {
	key := Key(e.Input)

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteTx(tx, key); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO transcripts (transcript_key, source, platform, title, input_path, output_path,
		  first_message, last_message, converted_at, mtime, size, options_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		string(e.Source),
		e.Doc.Platform,
		e.Doc.Title,
		absPath(e.Input),
		absPath(e.Output),
		e.Doc.FirstMessage,
		e.Doc.LastMessage,
		time.Now().Unix(),
		e.Mtime,
		e.Size,
		e.OptionsHash,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO blocks (transcript_key, block_id, ts, speaker, kind, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, b := range e.Doc.Blocks {
		kind := b.Kind
		if kind == "" {
			kind = transcript.BlockText
		}
		if _, err := stmt.Exec(key, i, b.Timestamp, b.Speaker, kind, b.Text, b.Line); err != nil {
			return fmt.Errorf("insert block %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Prune drops transcripts whose output file no longer exists.
func Prune(db *DB) (int, error) {
	paths, err := db.OutputPaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key, p := range paths {
		if _, err := os.Stat(p); err == nil || !os.IsNotExist(err) {
			continue
		}
		if err := db.DeleteTranscript(key); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
