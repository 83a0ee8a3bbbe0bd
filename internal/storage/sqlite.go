package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists chunks and their embedding vectors for one
// (domain, language) collection. Each collection is a self-contained SQLite
// file, independently loadable and rebuildable.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id             TEXT PRIMARY KEY,
	content        TEXT NOT NULL,
	category       TEXT NOT NULL,
	sub_category   TEXT NOT NULL DEFAULT '',
	language       TEXT NOT NULL,
	section        TEXT NOT NULL,
	context_header TEXT NOT NULL,
	keywords       TEXT NOT NULL DEFAULT '[]',
	is_table       INTEGER NOT NULL DEFAULT 0,
	is_faq         INTEGER NOT NULL DEFAULT 0,
	full_table     INTEGER NOT NULL DEFAULT 0,
	embedding      BLOB
);
CREATE INDEX IF NOT EXISTS idx_chunks_category ON chunks(category);
CREATE INDEX IF NOT EXISTS idx_chunks_section ON chunks(section);
`

// Open opens (or creates) the collection store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// Single writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the on-disk location of the collection.
func (s *Store) Path() string { return s.path }

// UpsertChunks writes chunks and their vectors. Deterministic chunk IDs make
// re-ingestion an idempotent upsert.
func (s *Store) UpsertChunks(ctx context.Context, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
			(id, content, category, sub_category, language, section,
			 context_header, keywords, is_table, is_faq, full_table, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			category = excluded.category,
			sub_category = excluded.sub_category,
			language = excluded.language,
			section = excluded.section,
			context_header = excluded.context_header,
			keywords = excluded.keywords,
			is_table = excluded.is_table,
			is_faq = excluded.is_faq,
			full_table = excluded.full_table,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		keywords, err := json.Marshal(c.Keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords for %s: %w", c.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Content, string(c.Category), string(c.SubCategory),
			string(c.Language), c.Section, c.ContextHeader, string(keywords),
			boolInt(c.IsTable), boolInt(c.IsFAQ), boolInt(c.FullTable),
			encodeVector(vectors[i]),
		); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAll reads every chunk and vector in the collection.
func (s *Store) LoadAll(ctx context.Context) ([]Chunk, [][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, category, sub_category, language, section,
		       context_header, keywords, is_table, is_faq, full_table, embedding
		FROM chunks ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	var vectors [][]float32

	for rows.Next() {
		var c Chunk
		var cat, sub, lang, keywords string
		var isTable, isFAQ, fullTable int
		var blob []byte

		if err := rows.Scan(&c.ID, &c.Content, &cat, &sub, &lang, &c.Section,
			&c.ContextHeader, &keywords, &isTable, &isFAQ, &fullTable, &blob); err != nil {
			return nil, nil, fmt.Errorf("scan chunk: %w", err)
		}

		c.Category = Category(cat)
		c.SubCategory = SubCategory(sub)
		c.Language = Language(lang)
		c.IsTable = isTable != 0
		c.IsFAQ = isFAQ != 0
		c.FullTable = fullTable != 0

		if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
			return nil, nil, fmt.Errorf("unmarshal keywords for %s: %w", c.ID, err)
		}

		chunks = append(chunks, c)
		vectors = append(vectors, decodeVector(blob))
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return chunks, vectors, nil
}

// Count returns the number of persisted chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeVector packs a float32 vector into a little-endian blob.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// decodeVector unpacks a little-endian blob into a float32 vector.
func decodeVector(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
