package model

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/simulation"
)

// A Transceiver connects the cells of a connectivity set through the GIDs
// allocated for the set. The cells of the local transmitters send on their
// GID, and every edge arriving on a local cell listens to the GID of its
// sender.
type Transceiver struct {
	name    string
	synapse string
	weight  float64
	delay   float64
}

// NewTransceiver creates a Transceiver for the connectivity set of the name.
// Connections target the ExpSyn synapse with weight 1 and delay 1 ms.
func NewTransceiver(name string) *Transceiver {
	return &Transceiver{
		name:    name,
		synapse: "ExpSyn",
		weight:  1,
		delay:   1,
	}
}

// WithSynapse sets the synapse the connections target.
func (t *Transceiver) WithSynapse(synapse string) *Transceiver {
	t.synapse = synapse
	return t
}

// WithWeight sets the weight of the connections.
func (t *Transceiver) WithWeight(weight float64) *Transceiver {
	t.weight = weight
	return t
}

// WithDelay sets the delay of the connections, in ms.
func (t *Transceiver) WithDelay(delay float64) *Transceiver {
	t.delay = delay
	return t
}

// Name returns the name of the connectivity set.
func (t *Transceiver) Name() string {
	return t.name
}

// CreateConnections creates the transmitters then the receivers of the set.
func (t *Transceiver) CreateConnections(
	ctx context.Context,
	data simulation.Prepared,
	cs connectivity.Set,
) error {
	ts, ok := data.TransMap()[cs.Name()]
	if !ok {
		return fmt.Errorf("no gids allocated for connectivity set %s", cs.Name())
	}

	if err := t.createTransmitters(data, cs, ts); err != nil {
		return err
	}

	return t.createReceivers(ctx, data, cs, ts)
}

func (t *Transceiver) createTransmitters(
	data simulation.Prepared,
	cs connectivity.Set,
	ts *gid.Transceivers,
) error {
	if len(ts.Transmitters) == 0 {
		return nil
	}

	cells, _ := data.Population(cs.PreType())

	coords := slices.SortedFunc(maps.Keys(ts.Transmitters), func(a, b gid.Coord) int {
		return cmp.Or(cmp.Compare(a.Cell, b.Cell), cmp.Compare(a.Branch, b.Branch))
	})

	for _, coord := range coords {
		if coord.Cell >= len(cells) {
			return fmt.Errorf("%s: transmitter %s outside of population %s",
				cs.Name(), coord, cs.PreType())
		}

		source := engine.Source{
			Population: cs.PreType(),
			Cell:       cells[coord.Cell].ID(),
			Branch:     coord.Branch,
		}

		if err := data.Transmit(ts.Transmitters[coord], source); err != nil {
			return fmt.Errorf("%s: %w", cs.Name(), err)
		}
	}

	return nil
}

func (t *Transceiver) createReceivers(
	ctx context.Context,
	data simulation.Prepared,
	cs connectivity.Set,
	ts *gid.Transceivers,
) error {
	edges, err := cs.To(ctx, data.Chunks())
	if err != nil {
		return fmt.Errorf("loading edges into %s: %w", cs.Name(), err)
	}

	if len(edges) == 0 {
		return nil
	}

	cells, _ := data.Population(cs.PostType())

	layout, ok := data.Layout(cs.PostType())
	if !ok {
		return fmt.Errorf("%s: no layout for %s", cs.Name(), cs.PostType())
	}

	ncs := make([]*engine.NetCon, 0, len(edges))
	for _, e := range edges {
		g, ok := ts.Receivers[gid.KeyOf(e.Pre)]
		if !ok {
			return fmt.Errorf("%s: no gid for sender %s", cs.Name(), gid.KeyOf(e.Pre))
		}

		i, ok := layout.Index(e.Post.Chunk, e.Post.Local)
		if !ok || i >= len(cells) {
			return fmt.Errorf("%s: receiving cell %d of chunk %s is not placed",
				cs.Name(), e.Post.Local, e.Post.Chunk)
		}

		nc, err := data.Engine().GIDConnect(g, engine.Target{
			Population: cs.PostType(),
			Cell:       cells[i].ID(),
			Synapse:    t.synapse,
		})
		if err != nil {
			return err
		}

		nc.Weight = t.weight
		nc.Delay = t.delay
		ncs = append(ncs, nc)
	}

	data.AddConnections(t.name, ncs)

	return nil
}

var _ simulation.ConnectionModel = (*Transceiver)(nil)
