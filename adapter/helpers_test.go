package adapter

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/model"
	"github.com/sarchlab/neuronbridge/simulation"
	"github.com/sarchlab/neuronbridge/storage"
)

func testNetwork() *storage.Memory {
	m, err := storage.Generate(storage.NetworkSpec{
		Grid:      [3]int{2, 2, 2},
		ChunkSize: 100,
		Populations: []storage.PopulationSpec{
			{CellType: "A", PerChunk: 3},
			{CellType: "B", PerChunk: 2, Morphology: "b.swc"},
		},
		Projections: []storage.ProjectionSpec{
			{Name: "A_to_A", Pre: "A", Post: "A", Probability: 0.1},
			{Name: "A_to_B", Pre: "A", Post: "B", Probability: 0.2, Branches: 2},
			{Name: "B_to_A", Pre: "B", Post: "A", Probability: 0.15},
		},
	}, 42)
	Expect(err).NotTo(HaveOccurred())

	return m
}

func testSimulation(s storage.Storage, name string, duration float64) *simulation.Simulation {
	return simulation.MakeBuilder().
		WithName(name).
		WithStorage(s).
		WithDuration(duration).
		WithCellModel(model.NewPointCellModel("A", "A")).
		WithCellModel(model.NewPointCellModel("B", "B")).
		WithConnectionModel(model.NewTransceiver("A_to_A")).
		WithConnectionModel(model.NewTransceiver("A_to_B").WithWeight(0.5)).
		WithConnectionModel(model.NewTransceiver("B_to_A")).
		WithDevice(model.NewClockRecorder("clock")).
		Build()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(GinkgoWriter)
	l.SetLevel(logrus.DebugLevel)

	return l
}

func newAdapters(size int) (*engine.World, []*NeuronAdapter) {
	w := engine.NewWorld(size)
	logger := quietLogger()

	adapters := make([]*NeuronAdapter, size)
	for rank := range adapters {
		adapters[rank] = MakeBuilder().
			WithEngine(w.Context(rank)).
			WithLogger(logger).
			Build()
	}

	return w, adapters
}

// onWorkers runs f concurrently with every adapter and returns the errors in
// rank order.
func onWorkers(adapters []*NeuronAdapter, f func(a *NeuronAdapter) error) []error {
	errs := make([]error, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)

		go func(i int, a *NeuronAdapter) {
			defer GinkgoRecover()
			defer wg.Done()
			errs[i] = f(a)
		}(i, a)
	}

	wg.Wait()

	return errs
}
