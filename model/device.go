package model

import (
	"context"
	"maps"
	"slices"

	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/hooking"
	"github.com/sarchlab/neuronbridge/result"
	"github.com/sarchlab/neuronbridge/simulation"
)

// A ClockRecorder records the simulation time every time the workers meet.
type ClockRecorder struct {
	name string
}

// NewClockRecorder creates a ClockRecorder.
func NewClockRecorder(name string) *ClockRecorder {
	return &ClockRecorder{name: name}
}

// Name returns the name of the device.
func (d *ClockRecorder) Name() string {
	return d.name
}

// Implement starts recording the time of the engine.
func (d *ClockRecorder) Implement(_ context.Context, data simulation.Prepared) error {
	trace := result.NewTrace(d.name, "ms", map[string]any{
		"device": d.name,
		"rank":   data.Engine().Rank(),
	})

	data.Result().AddRecorder(trace)
	data.Engine().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos != engine.HookPosAfterStep {
			return
		}

		t := ctx.Item.(float64)
		trace.Sample(t, t)
	}))

	return nil
}

// A TransmitterRecorder records the GIDs the local cells of some cell types
// transmit on. It records one signal per connectivity set, whose values are
// the sorted GIDs.
type TransmitterRecorder struct {
	name      string
	cellTypes []string
}

// NewTransmitterRecorder creates a TransmitterRecorder for the cell types.
func NewTransmitterRecorder(name string, cellTypes ...string) *TransmitterRecorder {
	return &TransmitterRecorder{name: name, cellTypes: cellTypes}
}

// Name returns the name of the device.
func (d *TransmitterRecorder) Name() string {
	return d.name
}

// Implement records the transmitters.
func (d *TransmitterRecorder) Implement(_ context.Context, data simulation.Prepared) error {
	tm := data.TransMap()
	rank := data.Engine().Rank()

	for _, set := range slices.Sorted(maps.Keys(tm)) {
		ts := tm[set]
		if !slices.Contains(d.cellTypes, ts.PreType) {
			continue
		}

		gids := slices.Sorted(maps.Values(ts.Transmitters))
		gids = slices.Compact(gids)

		values := make([]float64, len(gids))
		for i, g := range gids {
			values[i] = float64(g)
		}

		signal := result.Signal{
			Name: d.name,
			Annotations: map[string]any{
				"device":           d.name,
				"connectivity_set": set,
				"cell_type":        ts.PreType,
				"rank":             rank,
			},
			Values: values,
		}

		data.Result().AddRecorder(result.RecorderFunc(func() []result.Signal {
			return []result.Signal{signal}
		}))
	}

	return nil
}

var (
	_ simulation.Device = (*ClockRecorder)(nil)
	_ simulation.Device = (*TransmitterRecorder)(nil)
)
