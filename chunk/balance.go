package chunk

import (
	"github.com/montanaflynn/stats"
)

// A BalanceReport summarizes how the outgoing connections are spread over the
// workers of an allocation.
type BalanceReport struct {
	PerNode   []int
	Mean      float64
	StdDev    float64
	Max       float64
	Imbalance float64
}

// Balance computes the balance report of the allocation. It is informational
// and never changes the allocation.
func (a *Allocation) Balance(chunkStats map[Chunk]Stats) BalanceReport {
	r := BalanceReport{PerNode: make([]int, a.NumNodes())}
	if a.NumNodes() == 0 {
		return r
	}

	data := make(stats.Float64Data, a.NumNodes())
	for node, owned := range a.NodeChunks {
		for _, c := range owned {
			r.PerNode[node] += chunkStats[c].ConnectionsOut
		}

		data[node] = float64(r.PerNode[node])
	}

	r.Mean, _ = stats.Mean(data)
	r.StdDev, _ = stats.StandardDeviationPopulation(data)
	r.Max, _ = stats.Max(data)

	if r.Mean > 0 {
		r.Imbalance = r.Max / r.Mean
	}

	return r
}
