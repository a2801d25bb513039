package index

import (
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "archive", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntry(dir string, blocks int) Entry {
	doc := &transcript.Document{
		Title:        "Chat",
		Platform:     "Claude",
		FirstMessage: "2024-01-01 10:00 AM UTC",
		LastMessage:  "2024-01-01 10:05 AM UTC",
	}
	for i := 0; i < blocks; i++ {
		kind := transcript.BlockText
		if i%2 == 1 {
			kind = transcript.BlockThinking
		}
		doc.Blocks = append(doc.Blocks, transcript.Block{
			Speaker:   "User",
			Timestamp: "2024-01-01 10:00 AM UTC",
			Kind:      kind,
			Text:      "block text",
			Line:      9 + i*4,
		})
	}
	return Entry{
		Source:      parse.SourceClaude,
		Input:       filepath.Join(dir, "chat.json"),
		Output:      filepath.Join(dir, "chat.md"),
		Mtime:       100,
		Size:        200,
		OptionsHash: OptionsHash(transcript.Options{Source: parse.SourceClaude}),
		Doc:         doc,
	}
}

func TestKey(t *testing.T) {
	require.Equal(t, Key("/tmp/a.json"), Key("/tmp/a.json"))
	require.NotEqual(t, Key("/tmp/a.json"), Key("/tmp/b.json"))
	require.Len(t, Key("/tmp/a.json"), 36)
}

func TestRecord_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	e := testEntry(dir, 3)

	require.NoError(t, Record(db, e))

	row, err := db.GetTranscriptByKey(Key(e.Input))
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, "claude", row.Source)
	require.Equal(t, "Chat", row.Title)
	require.Equal(t, e.Output, row.OutputPath)
	require.Equal(t, "2024-01-01 10:00 AM UTC", row.FirstMessage)

	blocks, err := db.GetBlocks(row.Key)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, b := range blocks {
		require.Equal(t, i, b.BlockID)
		require.Equal(t, e.Doc.Blocks[i].Kind, b.Kind)
		require.Equal(t, e.Doc.Blocks[i].Line, b.LineNumber)
		require.Equal(t, "block text", b.Text)
	}

	// recording again replaces rather than duplicates
	e.Doc.Blocks = e.Doc.Blocks[:1]
	require.NoError(t, Record(db, e))
	n, err := db.BlockCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = db.TranscriptCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestGetTranscriptByKey_Missing(t *testing.T) {
	db := openTestDB(t)
	row, err := db.GetTranscriptByKey("nope")
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestNeedsUpdate(t *testing.T) {
	db := openTestDB(t)
	e := testEntry(t.TempDir(), 1)
	key := Key(e.Input)

	needs, err := NeedsUpdate(db, key, e.Mtime, e.Size, e.OptionsHash)
	require.NoError(t, err)
	require.True(t, needs)

	require.NoError(t, Record(db, e))

	needs, err = NeedsUpdate(db, key, e.Mtime, e.Size, e.OptionsHash)
	require.NoError(t, err)
	require.False(t, needs)

	needs, err = NeedsUpdate(db, key, e.Mtime+1, e.Size, e.OptionsHash)
	require.NoError(t, err)
	require.True(t, needs)

	other := OptionsHash(transcript.Options{Source: parse.SourceClaude, Reasoning: true})
	needs, err = NeedsUpdate(db, key, e.Mtime, e.Size, other)
	require.NoError(t, err)
	require.True(t, needs)
}

func TestOptionsHash(t *testing.T) {
	base := transcript.Options{Source: parse.SourceClaude, Timezone: "UTC", UserName: "User", AIName: "Claude"}
	require.Equal(t, OptionsHash(base), OptionsHash(base))
	require.Len(t, OptionsHash(base), 40)

	changes := []func(o *transcript.Options){
		func(o *transcript.Options) { o.Source = parse.SourceDeepSeek },
		func(o *transcript.Options) { o.Timezone = "Asia/Tokyo" },
		func(o *transcript.Options) { o.Reasoning = true },
		func(o *transcript.Options) { o.Title = "Renamed" },
		func(o *transcript.Options) { o.UserName = "Obi-Wan" },
		func(o *transcript.Options) { o.AIName = "HAL" },
	}
	for i, change := range changes {
		o := base
		change(&o)
		require.NotEqual(t, OptionsHash(base), OptionsHash(o), "change %d", i)
	}

	// logger and progress do not affect the output
	o := base
	o.Logger = log.New(io.Discard, "", 0)
	require.Equal(t, OptionsHash(base), OptionsHash(o))
}

func TestOpenDB_MigratesVersion1(t *testing.T) {
	p := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	_, err = raw.Exec(`
CREATE TABLE transcripts (
    transcript_key TEXT PRIMARY KEY,
    source         TEXT NOT NULL,
    platform       TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL DEFAULT '',
    input_path     TEXT NOT NULL,
    output_path    TEXT NOT NULL,
    first_message  TEXT NOT NULL DEFAULT '',
    last_message   TEXT NOT NULL DEFAULT '',
    converted_at   INTEGER NOT NULL DEFAULT 0,
    mtime          INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT);
INSERT INTO meta (key, value) VALUES ('schema_version', '1');
INSERT INTO transcripts (transcript_key, source, input_path, output_path, mtime, size)
VALUES ('k', 'claude', '/in.json', '/out.md', 100, 200);`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := OpenDB(p)
	require.NoError(t, err)
	defer db.Close()

	info, err := db.GetFileInfo("k")
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Zero(t, info.Mtime)
	require.Empty(t, info.OptionsHash)

	needs, err := NeedsUpdate(db, "k", 100, 200, "")
	require.NoError(t, err)
	require.True(t, needs)
}

func TestGetBlocksWindow(t *testing.T) {
	db := openTestDB(t)
	e := testEntry(t.TempDir(), 10)
	require.NoError(t, Record(db, e))
	key := Key(e.Input)

	blocks, hit, start, total, err := db.GetBlocksWindow(key, 5, 2)
	require.NoError(t, err)
	require.Equal(t, 10, total)
	require.Equal(t, 3, start)
	require.Len(t, blocks, 5)
	require.Equal(t, 2, hit)
	require.Equal(t, 5, blocks[hit].BlockID)

	blocks, hit, start, _, err = db.GetBlocksWindow(key, 0, 2)
	require.NoError(t, err)
	require.Equal(t, 0, start)
	require.Len(t, blocks, 3)
	require.Equal(t, 0, hit)

	blocks, hit, _, _, err = db.GetBlocksWindow(key, -1, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 10)
	require.Equal(t, -1, hit)
}

func TestListTranscripts(t *testing.T) {
	db := openTestDB(t)
	a := testEntry(t.TempDir(), 1)
	b := testEntry(t.TempDir(), 1)
	b.Source = parse.SourceDeepSeek
	require.NoError(t, Record(db, a))
	require.NoError(t, Record(db, b))

	all, err := db.ListTranscripts("", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ds, err := db.ListTranscripts("deepseek", 0)
	require.NoError(t, err)
	require.Len(t, ds, 1)

	one, err := db.ListTranscripts("", 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
}

func TestPrune(t *testing.T) {
	db := openTestDB(t)
	kept := testEntry(t.TempDir(), 1)
	require.NoError(t, os.WriteFile(kept.Output, []byte("# Chat\n"), 0o644))
	gone := testEntry(t.TempDir(), 2)

	require.NoError(t, Record(db, kept))
	require.NoError(t, Record(db, gone))

	n, err := Prune(db)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	row, err := db.GetTranscriptByKey(Key(gone.Input))
	require.NoError(t, err)
	require.Nil(t, row)
	blocks, err := db.GetBlocks(Key(gone.Input))
	require.NoError(t, err)
	require.Empty(t, blocks)

	row, err = db.GetTranscriptByKey(Key(kept.Input))
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestOpenDB_Reopen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.db")
	db, err := OpenDB(p)
	require.NoError(t, err)
	require.NoError(t, Record(db, testEntry(t.TempDir(), 1)))
	require.NoError(t, db.Close())

	db, err = OpenDB(p)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.TranscriptCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, p, db.Path())
}
