package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// liveKey is the Redis slot holding the most recent simulation snapshot. It
// is overwritten on every periodic save and read back once on boot so a
// restarted server continues the scene instead of starting a new one.
const liveKey = "proteus:snapshot:live"

var ErrNotFound = errors.New("snapshot not found")

// Store persists simulation snapshots. Redis carries the rolling live slot,
// Postgres carries named snapshots taken on demand. Either backend may be
// nil; the corresponding operations then report ErrNotFound or no-op.
type Store struct {
	db  *sqlx.DB
	rdb *redis.Client
}

func New(db *sqlx.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

// SaveLive overwrites the live snapshot slot.
func (s *Store) SaveLive(ctx context.Context, data []byte) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, liveKey, data, 0).Err()
}

// LoadLive returns the live snapshot, or ErrNotFound when the slot is empty
// or Redis is not configured.
func (s *Store) LoadLive(ctx context.Context) ([]byte, error) {
	if s.rdb == nil {
		return nil, ErrNotFound
	}
	data, err := s.rdb.Get(ctx, liveKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

// ClearLive drops the live slot, used when the simulation is reset so a
// restart does not resurrect the discarded scene.
func (s *Store) ClearLive(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, liveKey).Err(); err != nil {
		log.Printf("[STORE] failed to clear live snapshot: %v", err)
	}
}

// NamedSnapshot is a row in the snapshots table. Data stays raw JSON; the
// store never interprets simulation state.
type NamedSnapshot struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Data      json.RawMessage `db:"data" json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// SaveNamed inserts a named snapshot and returns its ID.
func (s *Store) SaveNamed(ctx context.Context, name string, data []byte) (int64, error) {
	if s.db == nil {
		return 0, errors.New("no database configured")
	}
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO snapshots (name, data) VALUES ($1, $2) RETURNING id`,
		name, data).Scan(&id)
	return id, err
}

// LoadNamed returns the snapshot blob for the given ID.
func (s *Store) LoadNamed(ctx context.Context, id int64) ([]byte, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	var row NamedSnapshot
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, data, created_at FROM snapshots WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

// ListNamed returns recent named snapshots without their payloads.
func (s *Store) ListNamed(ctx context.Context, limit int) ([]NamedSnapshot, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows := []NamedSnapshot{}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, created_at FROM snapshots ORDER BY created_at DESC LIMIT $1`, limit)
	return rows, err
}
