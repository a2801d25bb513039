package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
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
    size           INTEGER NOT NULL DEFAULT 0,
    options_hash   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS blocks (
    transcript_key TEXT NOT NULL,
    block_id       INTEGER NOT NULL,
    ts             TEXT NOT NULL DEFAULT '',
    speaker        TEXT NOT NULL,
    kind           TEXT NOT NULL DEFAULT 'text',
    text           TEXT NOT NULL,
    line_number    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (transcript_key, block_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
    text,
    content=blocks,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS blocks_ai AFTER INSERT ON blocks BEGIN
    INSERT INTO blocks_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS blocks_ad AFTER DELETE ON blocks BEGIN
    INSERT INTO blocks_fts(blocks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS blocks_au AFTER UPDATE ON blocks BEGIN
    INSERT INTO blocks_fts(blocks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO blocks_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db   *sql.DB
	path string
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection: the pragmas above are per connection, and batch
	// conversions write from several goroutines
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db, path: dbPath}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever block extraction or the stored
// columns change so that unchanged exports are converted again.
const schemaVersion = "2"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if ver == schemaVersion {
		return nil
	}
	if err := d.addColumn("transcripts", "options_hash", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	if _, err := d.db.Exec("UPDATE transcripts SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

// addColumn adds a column to an archive created by an older version. It is
// a no-op when the column exists.
func (d *DB) addColumn(table, column, decl string) error {
	rows, err := d.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid          int
			name, typ    string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = d.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// Path is the database file the archive was opened from.
func (d *DB) Path() string {
	return d.path
}

type FileInfo struct {
	Mtime       int64
	Size        int64
	OptionsHash string
}

func (d *DB) GetFileInfo(key string) (*FileInfo, error) {
	var info FileInfo
	err := d.db.QueryRow(
		"SELECT mtime, size, options_hash FROM transcripts WHERE transcript_key = ?",
		key,
	).Scan(&info.Mtime, &info.Size, &info.OptionsHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// OutputPaths maps every archived transcript key to its output file.
func (d *DB) OutputPaths() (map[string]string, error) {
	rows, err := d.db.Query("SELECT transcript_key, output_path FROM transcripts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]string)
	for rows.Next() {
		var k, p string
		if err := rows.Scan(&k, &p); err != nil {
			return nil, err
		}
		paths[k] = p
	}
	return paths, rows.Err()
}

func (d *DB) DeleteTranscript(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteTx(tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteTx(tx *sql.Tx, key string) error {
	if _, err := tx.Exec("DELETE FROM blocks WHERE transcript_key = ?", key); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", key)
	return err
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) BlockCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM blocks").Scan(&n)
	return n, err
}

type TranscriptRow struct {
	Key          string
	Source       string
	Platform     string
	Title        string
	InputPath    string
	OutputPath   string
	FirstMessage string
	LastMessage  string
	ConvertedAt  int64
}

const transcriptCols = "transcript_key, source, platform, title, input_path, output_path, first_message, last_message, converted_at"

func scanTranscript(sc interface{ Scan(...any) error }, t *TranscriptRow) error {
	return sc.Scan(&t.Key, &t.Source, &t.Platform, &t.Title, &t.InputPath, &t.OutputPath,
		&t.FirstMessage, &t.LastMessage, &t.ConvertedAt)
}

func (d *DB) GetTranscriptByKey(key string) (*TranscriptRow, error) {
	var t TranscriptRow
	err := scanTranscript(d.db.QueryRow(
		"SELECT "+transcriptCols+" FROM transcripts WHERE transcript_key = ?", key,
	), &t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTranscripts returns archived transcripts, most recently converted
// first. limit <= 0 means no limit.
func (d *DB) ListTranscripts(source string, limit int) ([]TranscriptRow, error) {
	q := "SELECT " + transcriptCols + " FROM transcripts"
	var args []any
	if source != "" {
		q += " WHERE source = ?"
		args = append(args, source)
	}
	q += " ORDER BY converted_at DESC, transcript_key"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranscriptRow
	for rows.Next() {
		var t TranscriptRow
		if err := scanTranscript(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type BlockRow struct {
	TranscriptKey string
	BlockID       int
	Ts            string
	Speaker       string
	Kind          string
	Text          string
	LineNumber    int
}

const blockCols = "transcript_key, block_id, ts, speaker, kind, text, line_number"

func scanBlock(rows *sql.Rows) (BlockRow, error) {
	var b BlockRow
	err := rows.Scan(&b.TranscriptKey, &b.BlockID, &b.Ts, &b.Speaker, &b.Kind, &b.Text, &b.LineNumber)
	return b, err
}

func (d *DB) GetBlocks(key string) ([]BlockRow, error) {
	rows, err := d.db.Query(
		"SELECT "+blockCols+" FROM blocks WHERE transcript_key = ? ORDER BY block_id",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []BlockRow
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// GetBlocksWindow returns up to context blocks either side of the hit
// block. startPos is the number of blocks before the returned window and
// totalCount the number of blocks in the transcript. A negative hitBlockID
// returns every block.
func (d *DB) GetBlocksWindow(key string, hitBlockID, context int) (blocks []BlockRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM blocks WHERE transcript_key = ?", key,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	hitPos := -1
	if hitBlockID >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT block_id, ROW_NUMBER() OVER (ORDER BY block_id) - 1 AS pos
				FROM blocks WHERE transcript_key = ?
			) WHERE block_id = ?`,
			key, hitBlockID,
		).Scan(&hitPos)
		if err == sql.ErrNoRows {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = max(hitPos-context, 0)
		endPos := min(hitPos+context+1, totalCount)
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+blockCols+" FROM blocks WHERE transcript_key = ? ORDER BY block_id LIMIT ? OFFSET ?",
		key, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	localHitIdx := -1
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, -1, 0, 0, err
		}
		if b.BlockID == hitBlockID {
			localHitIdx = len(blocks)
		}
		blocks = append(blocks, b)
	}
	return blocks, localHitIdx, startPos, totalCount, rows.Err()
}
