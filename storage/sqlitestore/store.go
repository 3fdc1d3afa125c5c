// Package sqlitestore stores networks in SQLite databases.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/storage"
)

const schema = `
CREATE TABLE cells (
	cell_type TEXT NOT NULL,
	chunk INTEGER NOT NULL,
	local INTEGER NOT NULL,
	id INTEGER NOT NULL,
	x REAL, y REAL, z REAL,
	morphology TEXT,
	rx REAL, ry REAL, rz REAL,
	PRIMARY KEY (cell_type, chunk, local)
);
CREATE TABLE additional (
	cell_type TEXT NOT NULL,
	chunk INTEGER NOT NULL,
	local INTEGER NOT NULL,
	name TEXT NOT NULL,
	value REAL NOT NULL
);
CREATE TABLE datasets (
	cell_type TEXT NOT NULL,
	dataset TEXT NOT NULL,
	PRIMARY KEY (cell_type, dataset)
);
CREATE TABLE connectivity_sets (
	name TEXT PRIMARY KEY,
	pre_type TEXT NOT NULL,
	post_type TEXT NOT NULL
);
CREATE TABLE edges (
	set_name TEXT NOT NULL,
	seq INTEGER NOT NULL,
	pre_chunk INTEGER NOT NULL,
	pre_local INTEGER NOT NULL,
	pre_id INTEGER NOT NULL,
	pre_branch INTEGER NOT NULL,
	pre_point INTEGER NOT NULL,
	post_chunk INTEGER NOT NULL,
	post_local INTEGER NOT NULL,
	post_id INTEGER NOT NULL,
	post_branch INTEGER NOT NULL,
	post_point INTEGER NOT NULL
);
CREATE INDEX edges_pre ON edges (set_name, pre_chunk);
CREATE INDEX edges_post ON edges (set_name, post_chunk);
`

const (
	datasetPositions    = "positions"
	datasetMorphologies = "morphologies"
	datasetRotations    = "rotations"
	datasetAdditional   = "additional"
)

// A Store is a storage.Storage backed by a SQLite database.
type Store struct {
	*sql.DB
}

// Create creates a new database file with an empty schema. It fails if the
// file already exists.
func Create(path string) (*Store, error) {
	_, err := os.Stat(path)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{DB: db}, nil
}

// Open opens an existing database file.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps a database that already holds the schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ChunkStats aggregates the cells and the edges per chunk.
func (s *Store) ChunkStats(ctx context.Context) (map[chunk.Chunk]chunk.Stats, error) {
	stats := make(map[chunk.Chunk]chunk.Stats)

	queries := []struct {
		query  string
		update func(st *chunk.Stats, n int)
	}{
		{
			"SELECT chunk, COUNT(*) FROM cells GROUP BY chunk",
			func(st *chunk.Stats, n int) { st.Placed = n },
		},
		{
			"SELECT pre_chunk, COUNT(*) FROM edges GROUP BY pre_chunk",
			func(st *chunk.Stats, n int) { st.ConnectionsOut = n },
		},
		{
			"SELECT post_chunk, COUNT(*) FROM edges GROUP BY post_chunk",
			func(st *chunk.Stats, n int) { st.ConnectionsIn = n },
		},
	}

	for _, q := range queries {
		rows, err := s.QueryContext(ctx, q.query)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var id int64
			var n int
			if err := rows.Scan(&id, &n); err != nil {
				rows.Close()
				return nil, err
			}

			c := chunk.FromID(uint64(id))
			st := stats[c]
			q.update(&st, n)
			stats[c] = st
		}

		err = rows.Err()
		rows.Close()

		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// PlacementSet returns the cells of a cell type.
func (s *Store) PlacementSet(ctx context.Context, cellType string) (placement.Set, error) {
	var n int

	err := s.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM datasets WHERE cell_type = ?", cellType).Scan(&n)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, fmt.Errorf("placement set %s: %w", cellType, storage.ErrNotFound)
	}

	return &placementSet{store: s, cellType: cellType}, nil
}

// ConnectivitySets returns every connectivity set, sorted by name.
func (s *Store) ConnectivitySets(ctx context.Context) ([]connectivity.Set, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT name, pre_type, post_type FROM connectivity_sets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []connectivity.Set
	for rows.Next() {
		cs := &connectivitySet{store: s}
		if err := rows.Scan(&cs.name, &cs.preType, &cs.postType); err != nil {
			return nil, err
		}

		sets = append(sets, cs)
	}

	return sets, rows.Err()
}

// ConnectivitySet returns a connectivity set by name.
func (s *Store) ConnectivitySet(ctx context.Context, name string) (connectivity.Set, error) {
	cs := &connectivitySet{store: s}

	err := s.QueryRowContext(ctx,
		"SELECT name, pre_type, post_type FROM connectivity_sets WHERE name = ?",
		name).Scan(&cs.name, &cs.preType, &cs.postType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("connectivity set %s: %w", name, storage.ErrNotFound)
	}

	if err != nil {
		return nil, err
	}

	return cs, nil
}

func chunkFilter(column string, chunks []chunk.Chunk) (string, []any) {
	if len(chunks) == 0 {
		return "0", nil
	}

	marks := make([]string, len(chunks))
	args := make([]any, len(chunks))

	for i, c := range chunks {
		marks[i] = "?"
		args[i] = int64(c.ID())
	}

	return column + " IN (" + strings.Join(marks, ", ") + ")", args
}

var _ storage.Storage = (*Store)(nil)
