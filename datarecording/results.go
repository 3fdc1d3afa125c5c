package datarecording

import (
	"github.com/sarchlab/neuronbridge/result"
)

// SampleTable holds the samples of the recorded signals.
const SampleTable = "signal_samples"

// SampleEntry is a row of the signal_samples table.
type SampleEntry struct {
	Run        string
	Simulation string
	Rank       int
	Signal     string
	Unit       string
	Time       float64
	Value      float64
}

// RecordResults writes the signals of flushed results. Signals without
// sample times are written with their index as the time.
func RecordResults(recorder DataRecorder, run string, rank int, results []*result.Result) {
	recorder.CreateTable(SampleTable, SampleEntry{})

	for _, r := range results {
		for _, s := range r.Signals() {
			for i, v := range s.Values {
				t := float64(i)
				if i < len(s.Times) {
					t = s.Times[i]
				}

				recorder.InsertData(SampleTable, SampleEntry{
					Run:        run,
					Simulation: r.Simulation,
					Rank:       rank,
					Signal:     s.Name,
					Unit:       s.Unit,
					Time:       t,
					Value:      v,
				})
			}
		}
	}
}
