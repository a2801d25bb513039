package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/aichatmd/internal/index"
)

type Result struct {
	TranscriptKey string
	BlockID       int // -1 for list entries
	Title         string
	Source        string
	Platform      string
	OutputPath    string
	LastMessage   string
	ConvertedAt   int64
	Snippet       string
	Speaker       string
	Kind          string
	LineNumber    int
	Rank          float64
}

type Options struct {
	Query   string
	Source  string // "" = all, "claude", "chatgpt", "deepseek"
	Speaker string // "" = all, display name as rendered
	Kind    string // "" = all, "text", "thinking"
	Since   int64  // unix seconds, 0 = no filter on conversion time
	Limit   int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// quoteFTS turns free text into an FTS5 query of quoted terms so that
// punctuation in the input is not read as query syntax.
func quoteFTS(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	lower := strings.ToLower(text)
	idx := -1
	if query != "" {
		idx = strings.Index(lower, strings.ToLower(query))
	}
	if idx < 0 {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := len([]rune(query))
	runePos := len([]rune(lower[:idx]))
	if runePos+qLen > len(runes) {
		qLen = len(runes) - runePos
	}
	start := max(runePos-contextChars, 0)
	end := min(runePos+qLen+contextChars, len(runes))

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
		if err != nil {
			// the FTS table can be missing or corrupt while blocks is intact
			var likeErr error
			if results, likeErr = searchLike(db, opts); likeErr == nil {
				err = nil
			}
		}
	}
	if err != nil {
		return nil, err
	}

	// keep only the best-ranked block per transcript
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.TranscriptKey] {
			continue
		}
		seen[r.TranscriptKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters renders the non-query conditions shared by both search paths.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any
	if opts.Source != "" {
		conditions = append(conditions, "t.source = ?")
		args = append(args, opts.Source)
	}
	if opts.Speaker != "" {
		conditions = append(conditions, "b.speaker = ?")
		args = append(args, opts.Speaker)
	}
	if opts.Kind != "" {
		conditions = append(conditions, "b.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Since > 0 {
		conditions = append(conditions, "t.converted_at >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

const resultCols = `
			b.transcript_key,
			b.block_id,
			t.title,
			t.source,
			t.platform,
			t.output_path,
			t.last_message,
			t.converted_at`

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"blocks_fts MATCH ?"}
	args := []any{quoteFTS(opts.Query)}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(blocks_fts, 0, '>>>','<<<', '...', 40) as snip,
			b.speaker,
			b.kind,
			b.line_number,
			bm25(blocks_fts, 1.0) as rank
		FROM blocks_fts
		JOIN blocks b ON blocks_fts.rowid = b.rowid
		JOIN transcripts t ON b.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, resultCols, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptKey, &r.BlockID, &r.Title, &r.Source, &r.Platform,
			&r.OutputPath, &r.LastMessage, &r.ConvertedAt,
			&r.Snippet, &r.Speaker, &r.Kind, &r.LineNumber, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"b.text LIKE ?"}
	args := []any{"%" + opts.Query + "%"}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT %s,
			b.text,
			b.speaker,
			b.kind,
			b.line_number
		FROM blocks b
		JOIN transcripts t ON b.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY t.converted_at DESC, b.block_id
		LIMIT ?
	`, resultCols, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.TranscriptKey, &r.BlockID, &r.Title, &r.Source, &r.Platform,
			&r.OutputPath, &r.LastMessage, &r.ConvertedAt,
			&fullText, &r.Speaker, &r.Kind, &r.LineNumber,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns every archived transcript, most recently converted
// first, with the head of its first block as the snippet.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	var conditions []string
	var args []any
	if opts.Source != "" {
		conditions = append(conditions, "t.source = ?")
		args = append(args, opts.Source)
	}
	if opts.Since > 0 {
		conditions = append(conditions, "t.converted_at >= ?")
		args = append(args, opts.Since)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			t.transcript_key,
			t.title,
			t.source,
			t.platform,
			t.output_path,
			t.last_message,
			t.converted_at,
			COALESCE((SELECT b.text FROM blocks b WHERE b.transcript_key = t.transcript_key ORDER BY b.block_id LIMIT 1), '')
		FROM transcripts t
		%s
		ORDER BY t.converted_at DESC, t.transcript_key
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	return scanList(rows)
}

func scanList(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		r := Result{BlockID: -1}
		var head string
		if err := rows.Scan(
			&r.TranscriptKey, &r.Title, &r.Source, &r.Platform,
			&r.OutputPath, &r.LastMessage, &r.ConvertedAt, &head,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(head, "", 40)
		results = append(results, r)
	}
	return results, rows.Err()
}
