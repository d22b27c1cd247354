// Package persistence provides SQLite-based save storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexsweep/internal/engine"
	"github.com/talgya/hexsweep/internal/world"
)

// DB wraps a SQLite connection for save persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		revealed INTEGER NOT NULL,
		flagged INTEGER NOT NULL,
		has_token INTEGER NOT NULL,
		is_mine INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS locked_zones (
		zq INTEGER NOT NULL,
		zr INTEGER NOT NULL,
		PRIMARY KEY (zq, zr)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type cellRow struct {
	Q        int  `db:"q"`
	R        int  `db:"r"`
	Revealed bool `db:"revealed"`
	Flagged  bool `db:"flagged"`
	HasToken bool `db:"has_token"`
	IsMine   bool `db:"is_mine"`
}

type zoneRow struct {
	ZQ int `db:"zq"`
	ZR int `db:"zr"`
}

// SaveWorldState writes the full save, replacing what was stored.
func (db *DB) SaveWorldState(st engine.SaveState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM locked_zones"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(q, r, revealed, flagged, has_token, is_mine)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sc := range st.Cells {
		c, err := world.ParseKey(sc.Key)
		if err != nil {
			return fmt.Errorf("insert cell: %w", err)
		}
		hasToken := sc.HasToken != nil && *sc.HasToken
		if _, err := stmt.Exec(c.Q, c.R, sc.Revealed, sc.Flagged, hasToken, sc.IsMine); err != nil {
			return fmt.Errorf("insert cell %s: %w", sc.Key, err)
		}
	}

	for _, key := range st.LockedZones {
		z, err := world.ParseKey(key)
		if err != nil {
			return fmt.Errorf("insert zone: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO locked_zones (zq, zr) VALUES (?, ?)", z.Q, z.R); err != nil {
			return fmt.Errorf("insert zone %s: %w", key, err)
		}
	}

	camera, err := json.Marshal(st.Camera)
	if err != nil {
		return err
	}
	meta := map[string]string{
		"tokens":     strconv.Itoa(st.Tokens),
		"score":      strconv.Itoa(st.Score),
		"flag_count": strconv.Itoa(st.FlagCount),
		"seed":       strconv.FormatFloat(st.Seed, 'g', -1, 64),
		"camera":     string(camera),
		"saved_at":   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("world state saved", "cells", len(st.Cells), "locked_zones", len(st.LockedZones))
	return nil
}

// HasWorldState reports whether a save has been written.
func (db *DB) HasWorldState() bool {
	_, err := db.GetMeta("seed")
	return err == nil
}

// LoadWorldState reads the stored save.
func (db *DB) LoadWorldState() (engine.SaveState, error) {
	st := engine.SaveState{Cells: []engine.SavedCell{}, LockedZones: []string{}}

	ints := map[string]*int{"tokens": &st.Tokens, "score": &st.Score, "flag_count": &st.FlagCount}
	for k, dst := range ints {
		v, err := db.GetMeta(k)
		if err != nil {
			return st, fmt.Errorf("load meta %s: %w", k, err)
		}
		if *dst, err = strconv.Atoi(v); err != nil {
			return st, fmt.Errorf("load meta %s: %w", k, err)
		}
	}
	seed, err := db.GetMeta("seed")
	if err != nil {
		return st, fmt.Errorf("load meta seed: %w", err)
	}
	if st.Seed, err = strconv.ParseFloat(seed, 64); err != nil {
		return st, fmt.Errorf("load meta seed: %w", err)
	}
	if camera, err := db.GetMeta("camera"); err == nil {
		if err := json.Unmarshal([]byte(camera), &st.Camera); err != nil {
			slog.Warn("ignoring unreadable camera", "error", err)
		}
	}

	var cells []cellRow
	if err := db.conn.Select(&cells, "SELECT q, r, revealed, flagged, has_token, is_mine FROM cells ORDER BY q, r"); err != nil {
		return st, fmt.Errorf("load cells: %w", err)
	}
	for _, row := range cells {
		hasToken := row.HasToken
		st.Cells = append(st.Cells, engine.SavedCell{
			Key:      world.HexCoord{Q: row.Q, R: row.R}.Key(),
			Revealed: row.Revealed,
			Flagged:  row.Flagged,
			IsMine:   row.IsMine,
			HasToken: &hasToken,
		})
	}

	var zones []zoneRow
	if err := db.conn.Select(&zones, "SELECT zq, zr FROM locked_zones ORDER BY zq, zr"); err != nil {
		return st, fmt.Errorf("load zones: %w", err)
	}
	for _, row := range zones {
		st.LockedZones = append(st.LockedZones, world.HexCoord{Q: row.ZQ, R: row.ZR}.Key())
	}
	return st, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SessionID returns the id of the stored world, minting one if none exists.
func (db *DB) SessionID() (string, error) {
	id, err := db.GetMeta("session_id")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	return db.NewSession()
}

// NewSession records a fresh session id, e.g. after a reset.
func (db *DB) NewSession() (string, error) {
	id := uuid.NewString()
	if err := db.SaveMeta("session_id", id); err != nil {
		return "", err
	}
	return id, nil
}
