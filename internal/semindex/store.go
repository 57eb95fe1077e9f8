// store.go persists the two column families §6.3 describes (screens,
// elements-with-embeddings) into modernc.org/sqlite, a pure-Go/cgo-free
// sqlite driver. Schema-version mismatches are quarantined rather than
// failing the reader, per the CorruptStore policy in §7.
package semindex

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/polzovatel/screenintel/internal/errs"
	"github.com/polzovatel/screenintel/internal/model"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS screens (
	id TEXT PRIMARY KEY,
	app TEXT,
	window_title TEXT,
	url TEXT,
	width INTEGER,
	height INTEGER,
	doc_type TEXT,
	description TEXT,
	llm_context TEXT,
	timestamp_unix INTEGER,
	version INTEGER
);
CREATE INDEX IF NOT EXISTS idx_screens_timestamp ON screens(timestamp_unix);

CREATE TABLE IF NOT EXISTS elements (
	screen_id TEXT,
	element_id TEXT,
	type TEXT,
	text TEXT,
	clickable INTEGER,
	screen_region TEXT,
	embedding BLOB,
	version INTEGER,
	PRIMARY KEY (screen_id, element_id)
);
CREATE INDEX IF NOT EXISTS idx_elements_screen ON elements(screen_id);

CREATE TABLE IF NOT EXISTS quarantine (
	screen_id TEXT,
	element_id TEXT,
	reason TEXT,
	quarantined_at INTEGER
);
`

// Store is the persistent key-value layout described in §6.3.
type Store struct {
	db *sql.DB
}

// openStore opens (and migrates) the sqlite-backed store at dsn.
func openStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer at a time
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// PutScreen writes a screen header + its elements (with embeddings, if
// any) in a single transaction. Idempotent per (screenId, elementId):
// re-indexing replaces existing rows for that screen only.
func (s *Store) PutScreen(state *model.ScreenState, embeddings map[string][]float32) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "begin tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM elements WHERE screen_id = ?`, state.ID); err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "clear old elements", err)
	}
	if _, err = tx.Exec(`
		INSERT INTO screens (id, app, window_title, url, width, height, doc_type, description, llm_context, timestamp_unix, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET app=excluded.app, window_title=excluded.window_title,
			url=excluded.url, width=excluded.width, height=excluded.height, doc_type=excluded.doc_type,
			description=excluded.description, llm_context=excluded.llm_context,
			timestamp_unix=excluded.timestamp_unix, version=excluded.version`,
		state.ID, state.App, state.WindowTitle, state.URL, state.ScreenDims.W, state.ScreenDims.H,
		state.DocType, state.Description, state.LLMContext, state.Timestamp.Unix(), schemaVersion,
	); err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "put screen header", err)
	}

	for _, el := range state.Elements {
		var blob []byte
		if vec, ok := embeddings[el.ID]; ok {
			blob = encodeVector(vec)
		}
		if _, err = tx.Exec(`
			INSERT INTO elements (screen_id, element_id, type, text, clickable, screen_region, embedding, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			state.ID, el.ID, string(el.Type), el.Text, boolToInt(el.Clickable), el.ScreenRegion, blob, schemaVersion,
		); err != nil {
			return errs.Wrap(errs.IndexWriteFailed, "put element", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "commit tx", err)
	}
	return nil
}

// ElementEmbedding is one row read back from the elements table, used to
// rebuild the in-memory ANN graph at startup.
type ElementEmbedding struct {
	ScreenID    string
	ElementID   string
	Type        string
	Text        string
	Clickable   bool
	ScreenRegion string
	Embedding   []float32
	Timestamp   time.Time
	App         string
}

// AllEmbeddings streams every (screen,element) row that carries a
// non-empty embedding, skipping rows whose version doesn't match
// (quarantining them instead of failing the whole scan).
func (s *Store) AllEmbeddings() ([]ElementEmbedding, error) {
	rows, err := s.db.Query(`
		SELECT e.screen_id, e.element_id, e.type, e.text, e.clickable, e.screen_region, e.embedding, e.version,
		       s.timestamp_unix, s.app
		FROM elements e JOIN screens s ON s.id = e.screen_id
		WHERE e.embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var out []ElementEmbedding
	for rows.Next() {
		var (
			screenID, elementID, typ, text, region string
			clickable, version                     int
			blob                                    []byte
			ts                                      int64
			app                                     string
		)
		if err := rows.Scan(&screenID, &elementID, &typ, &text, &clickable, &region, &blob, &version, &ts, &app); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		if version != schemaVersion {
			s.quarantine(screenID, elementID, "version_mismatch")
			continue
		}
		vec, err := decodeVector(blob)
		if err != nil {
			s.quarantine(screenID, elementID, "decode_failed")
			continue
		}
		out = append(out, ElementEmbedding{
			ScreenID: screenID, ElementID: elementID, Type: typ, Text: text,
			Clickable: clickable != 0, ScreenRegion: region, Embedding: vec,
			Timestamp: time.Unix(ts, 0), App: app,
		})
	}
	return out, rows.Err()
}

func (s *Store) quarantine(screenID, elementID, reason string) {
	_, _ = s.db.Exec(`INSERT INTO quarantine (screen_id, element_id, reason, quarantined_at) VALUES (?, ?, ?, ?)`,
		screenID, elementID, reason, time.Now().Unix())
}

// PurgeScreens deletes the given screenIds and their elements atomically.
func (s *Store) PurgeScreens(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "begin purge tx", err)
	}
	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM elements WHERE screen_id = ?`, id); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.IndexWriteFailed, "purge elements", err)
		}
		if _, err := tx.Exec(`DELETE FROM screens WHERE id = ?`, id); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.IndexWriteFailed, "purge screen", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.IndexWriteFailed, "commit purge", err)
	}
	return nil
}

// AllScreenIDs returns every screen id currently stored.
func (s *Store) AllScreenIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM screens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScreenIDsOlderThan returns screen ids whose timestamp predates cutoff.
func (s *Store) ScreenIDsOlderThan(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM screens WHERE timestamp_unix < ?`, cutoff.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OldestScreensFirst returns up to limit screen ids, oldest first.
func (s *Store) OldestScreensFirst(limit int) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM screens ORDER BY timestamp_unix ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats reports the counts stats() needs.
type Stats struct {
	ScreenCount   int
	ElementCount  int
	TotalBytes    int64
	OldestTime    time.Time
	TopAppsByScreens map[string]int
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM screens`).Scan(&st.ScreenCount); err != nil {
		return st, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&st.ElementCount); err != nil {
		return st, err
	}
	var oldest sql.NullInt64
	if err := s.db.QueryRow(`SELECT MIN(timestamp_unix) FROM screens`).Scan(&oldest); err != nil {
		return st, err
	}
	if oldest.Valid {
		st.OldestTime = time.Unix(oldest.Int64, 0)
	}
	var totalBlobLen sql.NullInt64
	if err := s.db.QueryRow(`SELECT SUM(LENGTH(embedding)) FROM elements`).Scan(&totalBlobLen); err != nil {
		return st, err
	}
	st.TotalBytes = totalBlobLen.Int64

	st.TopAppsByScreens = make(map[string]int)
	rows, err := s.db.Query(`SELECT app, COUNT(*) FROM screens GROUP BY app ORDER BY COUNT(*) DESC LIMIT 5`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var app string
		var c int
		if err := rows.Scan(&app, &c); err != nil {
			return st, err
		}
		st.TopAppsByScreens[app] = c
	}
	return st, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}
