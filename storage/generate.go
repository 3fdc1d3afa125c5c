package storage

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
)

// PopulationSpec describes a population of a generated network.
type PopulationSpec struct {
	CellType string `yaml:"cell_type"`

	// PerChunk is the number of cells placed in each chunk.
	PerChunk int `yaml:"per_chunk"`

	// Morphology names the morphology of every cell. The morphology dataset
	// is not stored when empty.
	Morphology string `yaml:"morphology"`
}

// ProjectionSpec describes a connectivity set of a generated network.
type ProjectionSpec struct {
	Name string `yaml:"name"`
	Pre  string `yaml:"pre"`
	Post string `yaml:"post"`

	// Probability is the chance that any pre-synaptic cell connects to any
	// post-synaptic cell.
	Probability float64 `yaml:"probability"`

	// Branches is the number of branches the connections leave from. 0 and 1
	// both mean that every connection leaves from branch 0.
	Branches int `yaml:"branches"`
}

// NetworkSpec describes a random network.
type NetworkSpec struct {
	// Grid is the number of chunks along each axis.
	Grid [3]int `yaml:"grid"`

	// ChunkSize is the side of a chunk in µm.
	ChunkSize float64 `yaml:"chunk_size"`

	Populations []PopulationSpec `yaml:"populations"`
	Projections []ProjectionSpec `yaml:"projections"`
}

// Validate checks that the network can be generated.
func (s NetworkSpec) Validate() error {
	for _, n := range s.Grid {
		if n < 1 || n > 1<<15 {
			return fmt.Errorf("grid dimension %d out of range", n)
		}
	}

	types := make(map[string]bool)
	for _, p := range s.Populations {
		if p.CellType == "" {
			return errors.New("population without cell type")
		}

		if types[p.CellType] {
			return fmt.Errorf("population %s defined twice", p.CellType)
		}

		if p.PerChunk < 0 {
			return fmt.Errorf("population %s: negative cell count", p.CellType)
		}

		types[p.CellType] = true
	}

	names := make(map[string]bool)
	for _, p := range s.Projections {
		if names[p.Name] {
			return fmt.Errorf("projection %s defined twice", p.Name)
		}

		if !types[p.Pre] || !types[p.Post] {
			return fmt.Errorf("projection %s: unknown population", p.Name)
		}

		if p.Probability < 0 || p.Probability > 1 {
			return fmt.Errorf("projection %s: probability out of [0, 1]", p.Name)
		}

		names[p.Name] = true
	}

	return nil
}

// Chunks returns the chunks of the grid, in id order.
func (s NetworkSpec) Chunks() []chunk.Chunk {
	chunks := make([]chunk.Chunk, 0, s.Grid[0]*s.Grid[1]*s.Grid[2])
	for x := 0; x < s.Grid[0]; x++ {
		for y := 0; y < s.Grid[1]; y++ {
			for z := 0; z < s.Grid[2]; z++ {
				chunks = append(chunks, chunk.Chunk{X: int16(x), Y: int16(y), Z: int16(z)})
			}
		}
	}

	return chunk.NewSet(chunks...)
}

// Generate builds a random network. The same spec and seed always produce the
// same network.
func Generate(spec NetworkSpec, seed int64) (*Memory, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	chunks := spec.Chunks()
	m := NewMemory()

	cells := make(map[string][]connectivity.Endpoint)
	for _, p := range spec.Populations {
		data := make(map[chunk.Chunk]placement.ChunkData)
		for _, c := range chunks {
			data[c] = generateChunk(rng, spec.ChunkSize, c, p)
		}

		ps := placement.NewMemorySet(p.CellType, data)
		m.AddPlacementSet(ps)

		for _, c := range chunks {
			for local := 0; local < p.PerChunk; local++ {
				cells[p.CellType] = append(cells[p.CellType], connectivity.Endpoint{
					Chunk:  c,
					Local:  local,
					Global: ps.GlobalID(c, local),
				})
			}
		}
	}

	for _, p := range spec.Projections {
		var edges []connectivity.Edge
		for _, pre := range cells[p.Pre] {
			for _, post := range cells[p.Post] {
				if rng.Float64() >= p.Probability {
					continue
				}

				if p.Branches > 1 {
					pre.Branch = rng.Intn(p.Branches)
				}

				edges = append(edges, connectivity.Edge{Pre: pre, Post: post})
			}
		}

		m.AddConnectivitySet(connectivity.NewMemorySet(p.Name, p.Pre, p.Post, edges))
	}

	return m, nil
}

func generateChunk(
	rng *rand.Rand,
	size float64,
	c chunk.Chunk,
	p PopulationSpec,
) placement.ChunkData {
	d := placement.ChunkData{Positions: make([]placement.Vec3, p.PerChunk)}

	origin := placement.Vec3{float64(c.X) * size, float64(c.Y) * size, float64(c.Z) * size}
	for i := range d.Positions {
		for axis := range origin {
			d.Positions[i][axis] = origin[axis] + rng.Float64()*size
		}
	}

	if p.Morphology != "" {
		d.Morphologies = make([]string, p.PerChunk)
		for i := range d.Morphologies {
			d.Morphologies[i] = p.Morphology
		}
	}

	return d
}
