package datarecording

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sarchlab/neuronbridge/adapter"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
	"github.com/sarchlab/neuronbridge/simulation"
)

// The tables written by an AllocationRecorder.
const (
	BlockTable       = "gid_blocks"
	TransmitterTable = "gid_transmitters"
	ReceiverTable    = "gid_receivers"
	SummaryTable     = "run_summary"
)

// BlockEntry is a row of the gid_blocks table.
type BlockEntry struct {
	Run        string
	Simulation string
	Rank       int
	Set        string
	First      int64
	Size       int
}

// TransmitterEntry is a row of the gid_transmitters table. Cell is the
// worker-local index of the sending cell.
type TransmitterEntry struct {
	Run        string
	Simulation string
	Rank       int
	Set        string
	Cell       int
	Branch     int
	GID        int64
}

// ReceiverEntry is a row of the gid_receivers table. Cell is the population
// id of the sending cell.
type ReceiverEntry struct {
	Run        string
	Simulation string
	Rank       int
	Set        string
	Cell       int
	Branch     int
	GID        int64
}

// SummaryEntry is a row of the run_summary table.
type SummaryEntry struct {
	Run         string
	Rank        int
	Simulations string
	Time        float64
	WallSeconds float64
}

// An AllocationRecorder is a hook on adapters that records the GIDs of every
// prepared simulation and a summary of every completed run.
type AllocationRecorder struct {
	recorder DataRecorder
	run      string
}

// NewAllocationRecorder creates the tables and returns the hook.
func NewAllocationRecorder(recorder DataRecorder, run string) *AllocationRecorder {
	recorder.CreateTable(BlockTable, BlockEntry{})
	recorder.CreateTable(TransmitterTable, TransmitterEntry{})
	recorder.CreateTable(ReceiverTable, ReceiverEntry{})
	recorder.CreateTable(SummaryTable, SummaryEntry{})

	return &AllocationRecorder{recorder: recorder, run: run}
}

// Func records the event.
func (r *AllocationRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case adapter.HookPosPrepared:
		r.recordPrepared(ctx.Item.(*adapter.SimulationData))
	case adapter.HookPosProgress:
		progress := ctx.Detail.(adapter.Progress)
		if progress.Done {
			r.recordSummary(ctx, progress)
		}
	}
}

func (r *AllocationRecorder) recordPrepared(data *adapter.SimulationData) {
	sim := data.Simulation().Name()
	rank := data.Engine().Rank()

	for _, b := range data.Blocks() {
		r.recorder.InsertData(BlockTable, BlockEntry{
			Run:        r.run,
			Simulation: sim,
			Rank:       rank,
			Set:        b.Set,
			First:      int64(b.First),
			Size:       b.Size,
		})
	}

	tm := data.TransMap()
	for _, set := range slices.Sorted(maps.Keys(tm)) {
		ts := tm[set]

		for _, c := range slices.SortedFunc(maps.Keys(ts.Transmitters), compareCoords) {
			r.recorder.InsertData(TransmitterTable, TransmitterEntry{
				Run:        r.run,
				Simulation: sim,
				Rank:       rank,
				Set:        set,
				Cell:       c.Cell,
				Branch:     c.Branch,
				GID:        int64(ts.Transmitters[c]),
			})
		}

		for _, k := range slices.SortedFunc(maps.Keys(ts.Receivers), gid.CompareKeys) {
			r.recorder.InsertData(ReceiverTable, ReceiverEntry{
				Run:        r.run,
				Simulation: sim,
				Rank:       rank,
				Set:        set,
				Cell:       k.Cell,
				Branch:     k.Branch,
				GID:        int64(ts.Receivers[k]),
			})
		}
	}
}

func (r *AllocationRecorder) recordSummary(ctx hooking.HookCtx, p adapter.Progress) {
	sims := ctx.Item.([]*simulation.Simulation)

	names := make([]string, len(sims))
	for i, s := range sims {
		names[i] = s.Name()
	}

	rank := 0
	if a, ok := ctx.Domain.(*adapter.NeuronAdapter); ok {
		rank = a.Engine().Rank()
	}

	r.recorder.InsertData(SummaryTable, SummaryEntry{
		Run:         r.run,
		Rank:        rank,
		Simulations: strings.Join(names, ","),
		Time:        p.Time,
		WallSeconds: p.Elapsed.Seconds(),
	})
}

func compareCoords(a, b gid.Coord) int {
	return cmp.Or(cmp.Compare(a.Cell, b.Cell), cmp.Compare(a.Branch, b.Branch))
}
