package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/placement"
)

type placementSet struct {
	store    *Store
	cellType string
}

func (p *placementSet) CellType() string {
	return p.cellType
}

func (p *placementSet) ChunkCounts(ctx context.Context) (map[chunk.Chunk]int, error) {
	rows, err := p.store.QueryContext(ctx,
		"SELECT chunk, COUNT(*) FROM cells WHERE cell_type = ? GROUP BY chunk",
		p.cellType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[chunk.Chunk]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}

		counts[chunk.FromID(uint64(id))] = n
	}

	return counts, rows.Err()
}

func (p *placementSet) hasDataset(ctx context.Context, dataset string) error {
	var n int

	err := p.store.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM datasets WHERE cell_type = ? AND dataset = ?",
		p.cellType, dataset).Scan(&n)
	if err != nil {
		return err
	}

	if n == 0 {
		return placement.ErrDatasetNotFound
	}

	return nil
}

// cells runs the query over the cells of the chunks, in chunk and placement
// order, and scans every row.
func (p *placementSet) cells(
	ctx context.Context,
	columns string,
	chunks []chunk.Chunk,
	scan func(rows *sql.Rows) error,
) error {
	filter, args := chunkFilter("chunk", chunks)
	query := "SELECT " + columns + " FROM cells WHERE cell_type = ? AND " +
		filter + " ORDER BY chunk, local"

	rows, err := p.store.QueryContext(ctx, query, append([]any{p.cellType}, args...)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (p *placementSet) IDs(ctx context.Context, chunks []chunk.Chunk) ([]int, error) {
	ids := []int{}
	err := p.cells(ctx, "id", chunks, func(rows *sql.Rows) error {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}

		ids = append(ids, id)

		return nil
	})

	return ids, err
}

func (p *placementSet) vectors(
	ctx context.Context,
	dataset, columns string,
	chunks []chunk.Chunk,
) ([]placement.Vec3, error) {
	if err := p.hasDataset(ctx, dataset); err != nil {
		return nil, err
	}

	values := []placement.Vec3{}
	err := p.cells(ctx, columns, chunks, func(rows *sql.Rows) error {
		var v placement.Vec3
		if err := rows.Scan(&v[0], &v[1], &v[2]); err != nil {
			return err
		}

		values = append(values, v)

		return nil
	})

	return values, err
}

func (p *placementSet) Positions(ctx context.Context, chunks []chunk.Chunk) ([]placement.Vec3, error) {
	return p.vectors(ctx, datasetPositions, "x, y, z", chunks)
}

func (p *placementSet) Rotations(ctx context.Context, chunks []chunk.Chunk) ([]placement.Vec3, error) {
	return p.vectors(ctx, datasetRotations, "rx, ry, rz", chunks)
}

func (p *placementSet) Morphologies(ctx context.Context, chunks []chunk.Chunk) ([]string, error) {
	if err := p.hasDataset(ctx, datasetMorphologies); err != nil {
		return nil, err
	}

	values := []string{}
	err := p.cells(ctx, "morphology", chunks, func(rows *sql.Rows) error {
		var m string
		if err := rows.Scan(&m); err != nil {
			return err
		}

		values = append(values, m)

		return nil
	})

	return values, err
}

func (p *placementSet) Additional(
	ctx context.Context,
	chunks []chunk.Chunk,
) (map[string][]float64, error) {
	if err := p.hasDataset(ctx, datasetAdditional); err != nil {
		return nil, err
	}

	filter, args := chunkFilter("chunk", chunks)
	query := "SELECT name, value FROM additional WHERE cell_type = ? AND " +
		filter + " ORDER BY name, chunk, local"

	rows, err := p.store.QueryContext(ctx, query, append([]any{p.cellType}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string][]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}

		columns[name] = append(columns[name], value)
	}

	return columns, rows.Err()
}

var _ placement.Set = (*placementSet)(nil)
