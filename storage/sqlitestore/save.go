package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/storage"
)

// Save copies the placement sets of the cell types and every connectivity set
// of the source into the store, in one transaction.
func (s *Store) Save(ctx context.Context, src storage.Storage, cellTypes []string) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = saveAll(ctx, tx, src, cellTypes)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}

	return tx.Commit()
}

func saveAll(ctx context.Context, tx *sql.Tx, src storage.Storage, cellTypes []string) error {
	for _, cellType := range cellTypes {
		ps, err := src.PlacementSet(ctx, cellType)
		if err != nil {
			return err
		}

		if err := savePlacementSet(ctx, tx, ps); err != nil {
			return fmt.Errorf("saving placement set %s: %w", cellType, err)
		}
	}

	sets, err := src.ConnectivitySets(ctx)
	if err != nil {
		return err
	}

	for _, cs := range sets {
		if err := saveConnectivitySet(ctx, tx, cs); err != nil {
			return fmt.Errorf("saving connectivity set %s: %w", cs.Name(), err)
		}
	}

	return nil
}

func savePlacementSet(ctx context.Context, tx *sql.Tx, ps placement.Set) error {
	counts, err := ps.ChunkCounts(ctx)
	if err != nil {
		return err
	}

	chunks := chunk.NewSet(slices.Collect(maps.Keys(counts))...)

	data, err := placement.Load(ctx, ps, chunks)
	if err != nil {
		return err
	}

	datasets := map[string]bool{
		"ids":               true,
		datasetPositions:    data.Positions.IsPresent(),
		datasetMorphologies: data.Morphologies.IsPresent(),
		datasetRotations:    data.Rotations.IsPresent(),
		datasetAdditional:   data.Additional.IsPresent(),
	}

	for _, name := range slices.Sorted(maps.Keys(datasets)) {
		if !datasets[name] {
			continue
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO datasets VALUES (?, ?)", ps.CellType(), name)
		if err != nil {
			return err
		}
	}

	cellStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cells VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer cellStmt.Close()

	extraStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO additional VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer extraStmt.Close()

	i := 0
	for _, c := range chunks {
		for local := 0; local < counts[c]; local++ {
			err := saveCell(ctx, cellStmt, extraStmt, ps.CellType(), c, local, data, i)
			if err != nil {
				return err
			}

			i++
		}
	}

	return nil
}

func saveCell(
	ctx context.Context,
	cellStmt, extraStmt *sql.Stmt,
	cellType string,
	c chunk.Chunk,
	local int,
	data *placement.Data,
	i int,
) error {
	row := []any{cellType, int64(c.ID()), local, data.IDs[i]}

	if pos, ok := data.Positions.At(i); ok {
		row = append(row, pos[0], pos[1], pos[2])
	} else {
		row = append(row, nil, nil, nil)
	}

	if m, ok := data.Morphologies.At(i); ok {
		row = append(row, m)
	} else {
		row = append(row, nil)
	}

	if rot, ok := data.Rotations.At(i); ok {
		row = append(row, rot[0], rot[1], rot[2])
	} else {
		row = append(row, nil, nil, nil)
	}

	if _, err := cellStmt.ExecContext(ctx, row...); err != nil {
		return err
	}

	extra, _ := data.Additional.At(i)
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		_, err := extraStmt.ExecContext(ctx,
			cellType, int64(c.ID()), local, name, extra[name])
		if err != nil {
			return err
		}
	}

	return nil
}

func saveConnectivitySet(ctx context.Context, tx *sql.Tx, cs connectivity.Set) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO connectivity_sets VALUES (?, ?, ?)",
		cs.Name(), cs.PreType(), cs.PostType())
	if err != nil {
		return err
	}

	edges, err := cs.All(ctx)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO edges VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, e := range edges {
		_, err := stmt.ExecContext(ctx, cs.Name(), seq,
			int64(e.Pre.Chunk.ID()), e.Pre.Local, e.Pre.Global, e.Pre.Branch, e.Pre.Point,
			int64(e.Post.Chunk.ID()), e.Post.Local, e.Post.Global, e.Post.Branch, e.Post.Point,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
