// Package reportdb persists assembled models and their flux solutions in a
// SQLite database so several networks can be queried side by side.
package reportdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/specialistvlad/fluxgrid/internal/solver"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS networks (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	metabolites     INTEGER NOT NULL,
	env_metabolites INTEGER NOT NULL,
	cyt_metabolites INTEGER NOT NULL,
	forward         INTEGER NOT NULL,
	reverse         INTEGER NOT NULL,
	nonzeros        INTEGER NOT NULL,
	objective_col   INTEGER NOT NULL,
	objective_value REAL
);
CREATE TABLE IF NOT EXISTS metabolites (
	network     TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	id          TEXT NOT NULL,
	compartment TEXT NOT NULL,
	PRIMARY KEY (network, idx)
);
CREATE TABLE IF NOT EXISTS reactions (
	network TEXT NOT NULL,
	idx     INTEGER NOT NULL,
	id      TEXT NOT NULL,
	reverse INTEGER NOT NULL,
	flux    REAL,
	PRIMARY KEY (network, idx)
);
CREATE TABLE IF NOT EXISTS entries (
	network     TEXT NOT NULL,
	position    INTEGER NOT NULL,
	metabolite  INTEGER NOT NULL,
	reaction    INTEGER NOT NULL,
	coefficient REAL NOT NULL,
	PRIMARY KEY (network, position)
);`

// Store is a SQLite-backed model store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, network.Errorf(network.ErrIO, "create dirs for %s: %v", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, network.Errorf(network.ErrIO, "open sqlite %s: %v", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, network.Errorf(network.ErrIO, "create schema in %s: %v", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveModel stores m, replacing any earlier model with the same network id.
func (s *Store) SaveModel(ctx context.Context, m *fba.Model) error {
	err := s.tx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"networks", "metabolites", "reactions", "entries"} {
			col := "network"
			if table == "networks" {
				col = "id"
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col), m.NetworkID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		sum := m.Summary()
		if _, err := tx.ExecContext(ctx, `INSERT INTO networks
			(id, name, metabolites, env_metabolites, cyt_metabolites, forward, reverse, nonzeros, objective_col)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.NetworkID, m.NetworkName, sum.Metabolites, sum.EnvironmentMetabolites, sum.CytosolMetabolites,
			sum.ForwardReactions, sum.ReverseReactions, sum.NonZeros, m.Objective,
		); err != nil {
			return fmt.Errorf("insert network: %w", err)
		}

		for _, met := range m.Metabolites {
			if _, err := tx.ExecContext(ctx, `INSERT INTO metabolites (network, idx, id, compartment) VALUES (?, ?, ?, ?)`,
				m.NetworkID, met.Index, met.ID, met.Compartment.String()); err != nil {
				return fmt.Errorf("insert metabolite %s: %w", met.ID, err)
			}
		}
		for _, r := range m.Reactions {
			reverse := 0
			if r.Reverse {
				reverse = 1
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO reactions (network, idx, id, reverse) VALUES (?, ?, ?, ?)`,
				m.NetworkID, r.Index, r.ID, reverse); err != nil {
				return fmt.Errorf("insert reaction %s: %w", r.ID, err)
			}
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (network, position, metabolite, reaction, coefficient) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for i, e := range m.Entries {
			if _, err := stmt.ExecContext(ctx, m.NetworkID, i+1, e.Metabolite, e.Reaction, e.Coefficient); err != nil {
				return fmt.Errorf("insert entry %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return network.Errorf(network.ErrIO, "save network %q to %s: %v", m.NetworkID, s.path, err)
	}
	return nil
}

// SaveResult records the objective value and column fluxes of a solved
// model saved earlier with SaveModel.
func (s *Store) SaveResult(ctx context.Context, m *fba.Model, res *solver.Result) error {
	err := s.tx(ctx, func(tx *sql.Tx) error {
		out, err := tx.ExecContext(ctx, `UPDATE networks SET objective_value = ? WHERE id = ?`, res.Objective, m.NetworkID)
		if err != nil {
			return err
		}
		if n, _ := out.RowsAffected(); n == 0 {
			return fmt.Errorf("network %q has not been saved", m.NetworkID)
		}
		for j, v := range res.Fluxes {
			if _, err := tx.ExecContext(ctx, `UPDATE reactions SET flux = ? WHERE network = ? AND idx = ?`, v, m.NetworkID, j); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return network.Errorf(network.ErrIO, "save result of %q to %s: %v", m.NetworkID, s.path, err)
	}
	return nil
}

// Entries returns the stored matrix entries of a network in emission order.
func (s *Store) Entries(ctx context.Context, networkID string) ([]fba.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metabolite, reaction, coefficient FROM entries WHERE network = ? ORDER BY position`, networkID)
	if err != nil {
		return nil, network.Errorf(network.ErrIO, "select entries: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var out []fba.Entry
	for rows.Next() {
		var e fba.Entry
		if err := rows.Scan(&e.Metabolite, &e.Reaction, &e.Coefficient); err != nil {
			return nil, network.Errorf(network.ErrIO, "scan entry: %v", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, network.Errorf(network.ErrIO, "select entries: %v", err)
	}
	return out, nil
}

// Flux returns the stored flux of a column by reaction id. ok is false when
// the network was never solved or has no such column.
func (s *Store) Flux(ctx context.Context, networkID, reactionID string) (v float64, ok bool, err error) {
	var flux sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `SELECT flux FROM reactions WHERE network = ? AND id = ?`, networkID, reactionID).Scan(&flux)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, network.Errorf(network.ErrIO, "select flux: %v", err)
	}
	return flux.Float64, flux.Valid, nil
}

// Networks returns the ids of all stored networks, sorted.
func (s *Store) Networks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM networks ORDER BY id`)
	if err != nil {
		return nil, network.Errorf(network.ErrIO, "select networks: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, network.Errorf(network.ErrIO, "scan network: %v", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
