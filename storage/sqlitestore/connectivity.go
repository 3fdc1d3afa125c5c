package sqlitestore

import (
	"context"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
)

const edgeColumns = `pre_chunk, pre_local, pre_id, pre_branch, pre_point,
	post_chunk, post_local, post_id, post_branch, post_point`

type connectivitySet struct {
	store    *Store
	name     string
	preType  string
	postType string
}

func (s *connectivitySet) Name() string {
	return s.name
}

func (s *connectivitySet) PreType() string {
	return s.preType
}

func (s *connectivitySet) PostType() string {
	return s.postType
}

func (s *connectivitySet) All(ctx context.Context) ([]connectivity.Edge, error) {
	return s.edges(ctx, "1", nil)
}

func (s *connectivitySet) From(ctx context.Context, chunks []chunk.Chunk) ([]connectivity.Edge, error) {
	filter, args := chunkFilter("pre_chunk", chunks)
	return s.edges(ctx, filter, args)
}

func (s *connectivitySet) To(ctx context.Context, chunks []chunk.Chunk) ([]connectivity.Edge, error) {
	filter, args := chunkFilter("post_chunk", chunks)
	return s.edges(ctx, filter, args)
}

func (s *connectivitySet) edges(
	ctx context.Context,
	filter string,
	args []any,
) ([]connectivity.Edge, error) {
	query := "SELECT " + edgeColumns + " FROM edges WHERE set_name = ? AND " +
		filter + " ORDER BY seq"

	rows, err := s.store.QueryContext(ctx, query, append([]any{s.name}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := []connectivity.Edge{}
	for rows.Next() {
		var e connectivity.Edge
		var preChunk, postChunk int64

		err := rows.Scan(
			&preChunk, &e.Pre.Local, &e.Pre.Global, &e.Pre.Branch, &e.Pre.Point,
			&postChunk, &e.Post.Local, &e.Post.Global, &e.Post.Branch, &e.Post.Point,
		)
		if err != nil {
			return nil, err
		}

		e.Pre.Chunk = chunk.FromID(uint64(preChunk))
		e.Post.Chunk = chunk.FromID(uint64(postChunk))
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

var _ connectivity.Set = (*connectivitySet)(nil)
