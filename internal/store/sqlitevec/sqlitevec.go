// Package sqlitevec persists creators, watch history, suggestions and
// embedding vectors in a single SQLite file.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"curator/internal/model"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite database used as the record and vector store.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: keeps :memory: databases shared and serializes writers.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS creators (
	  id TEXT PRIMARY KEY,
	  loyalty_score INTEGER NOT NULL DEFAULT 0,
	  data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS history (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  video_id TEXT NOT NULL,
	  channel_id TEXT NOT NULL,
	  ts INTEGER NOT NULL,
	  data TEXT NOT NULL,
	  UNIQUE(video_id, ts)
	);
	CREATE INDEX IF NOT EXISTS idx_history_channel ON history(channel_id);
	CREATE TABLE IF NOT EXISTS suggestions (
	  channel_id TEXT PRIMARY KEY,
	  position INTEGER NOT NULL,
	  reason TEXT NOT NULL,
	  status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS embeddings (
	  id TEXT PRIMARY KEY,
	  vector BLOB NOT NULL,
	  ts INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	`)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (d *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- creators ---

func (d *DB) GetCreators(ctx context.Context) (map[string]model.Creator, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT data FROM creators`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]model.Creator)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c model.Creator
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode creator: %w", err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (d *DB) GetCreator(ctx context.Context, id string) (model.Creator, error) {
	var raw string
	err := d.sql.QueryRowContext(ctx, `SELECT data FROM creators WHERE id=?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Creator{}, fmt.Errorf("creator %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Creator{}, err
	}
	var c model.Creator
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return model.Creator{}, fmt.Errorf("decode creator: %w", err)
	}
	return c, nil
}

func (d *DB) SaveCreator(ctx context.Context, c model.Creator) error {
	return saveCreator(ctx, d.sql, c)
}

// SaveCreators upserts every creator in one transaction.
func (d *DB) SaveCreators(ctx context.Context, creators map[string]model.Creator) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range creators {
			if err := saveCreator(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveCreator(ctx context.Context, ex execer, c model.Creator) error {
	if c.ID == "" {
		return errors.New("creator without id")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `INSERT INTO creators(id, loyalty_score, data) VALUES(?,?,?)
		ON CONFLICT(id) DO UPDATE SET loyalty_score=excluded.loyalty_score, data=excluded.data`, c.ID, c.LoyaltyScore, string(b))
	return err
}

// --- history ---

// GetHistory returns every watch event in insertion order.
func (d *DB) GetHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT data FROM history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.HistoryEntry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var h model.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddHistoryEntry appends h unless an entry with the same video and timestamp exists.
func (d *DB) AddHistoryEntry(ctx context.Context, h model.HistoryEntry) (bool, error) {
	return addHistory(ctx, d.sql, h)
}

// BulkAddHistory appends entries, skipping duplicates, and returns the ones that were new.
func (d *DB) BulkAddHistory(ctx context.Context, entries []model.HistoryEntry) ([]model.HistoryEntry, error) {
	var added []model.HistoryEntry
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		for _, h := range entries {
			ok, err := addHistory(ctx, tx, h)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, h)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func addHistory(ctx context.Context, ex execer, h model.HistoryEntry) (bool, error) {
	if h.VideoID == "" || h.ChannelID == "" {
		return false, errors.New("history entry needs videoId and channelId")
	}
	b, err := json.Marshal(h)
	if err != nil {
		return false, err
	}
	res, err := ex.ExecContext(ctx, `INSERT OR IGNORE INTO history(video_id, channel_id, ts, data) VALUES(?,?,?,?)`,
		h.VideoID, h.ChannelID, h.Timestamp, string(b))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// --- suggestions ---

func (d *DB) GetSuggestions(ctx context.Context) ([]model.Suggestion, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT channel_id, reason, status FROM suggestions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Suggestion
	for rows.Next() {
		var s model.Suggestion
		var status string
		if err := rows.Scan(&s.ChannelID, &s.Reason, &status); err != nil {
			return nil, err
		}
		s.Status = model.SuggestionStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveSuggestions replaces the stored list, keeping its order.
func (d *DB) SaveSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM suggestions`); err != nil {
			return err
		}
		for i, s := range suggestions {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO suggestions(channel_id, position, reason, status) VALUES(?,?,?,?)`,
				s.ChannelID, i, s.Reason, string(s.Status)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) UpdateSuggestionStatus(ctx context.Context, channelID string, status model.SuggestionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid suggestion status %q", status)
	}
	res, err := d.sql.ExecContext(ctx, `UPDATE suggestions SET status=? WHERE channel_id=?`, string(status), channelID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("suggestion %s: %w", channelID, ErrNotFound)
	}
	return nil
}

// --- embeddings ---

func (d *DB) SaveEmbedding(ctx context.Context, e model.EmbeddingEntry) error {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	_, err := d.sql.ExecContext(ctx, `INSERT INTO embeddings(id, vector, ts) VALUES(?,?,?)
		ON CONFLICT(id) DO UPDATE SET vector=excluded.vector, ts=excluded.ts`, e.ID, encodeF32(e.Embedding), e.Timestamp)
	return err
}

func (d *DB) GetEmbedding(ctx context.Context, id string) ([]float32, error) {
	var b []byte
	err := d.sql.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE id=?`, id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("embedding %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeF32(b), nil
}

func (d *DB) GetAllEmbeddings(ctx context.Context) ([]model.EmbeddingEntry, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, vector, ts FROM embeddings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EmbeddingEntry
	for rows.Next() {
		var e model.EmbeddingEntry
		var b []byte
		if err := rows.Scan(&e.ID, &b, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Embedding = decodeF32(b)
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- cursors and actions ---

// SaveCursor stores a small named value (last job runs, the active rabbit hole).
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// LoadCursor returns "" when key was never saved.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// PutAction records that an action of typ happened at ts.
func (d *DB) PutAction(ctx context.Context, ts time.Time, typ string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, type) VALUES(?,?)`, ts.UnixMilli(), typ)
	return err
}

// CountActionsWithin counts actions of typ in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<? AND type=?`, start.UnixMilli(), end.UnixMilli(), typ).Scan(&n)
	return n, err
}

// ClearAll wipes every table.
func (d *DB) ClearAll(ctx context.Context) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range []string{"creators", "history", "suggestions", "embeddings", "cursors", "actions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeF32(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v[i]))
	}
	return b
}

func decodeF32(b []byte) []float32 {
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
