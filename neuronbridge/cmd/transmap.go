package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/neuronbridge/adapter"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/storage/sqlitestore"
)

var transmapCmd = &cobra.Command{
	Use:   "transmap simulation",
	Short: "Print the GIDs a rank transmits and listens to.",
	Long: "`transmap` prepares a simulation on a single rank, without running " +
		"it, and prints the transmitter and receiver GIDs of every " +
		"connectivity set.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}

		rank, _ := cmd.Flags().GetInt("rank")
		if workers < 1 || rank < 0 || rank >= workers {
			return fmt.Errorf("rank %d out of range for %d workers", rank, workers)
		}

		store, err := sqlitestore.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		sims, err := buildSimulations(args, store)
		if err != nil {
			return err
		}

		a := adapter.MakeBuilder().
			WithEngine(engine.NewWorld(workers).Context(rank)).
			Build()

		data, err := a.Prepare(cmd.Context(), sims[0])
		if err != nil {
			return err
		}

		return printTransMap(cmd.OutOrStdout(), data)
	},
}

func init() {
	transmapCmd.Flags().IntP("workers", "w", 1, "number of engine ranks")
	transmapCmd.Flags().IntP("rank", "r", 0, "rank to print")
	rootCmd.AddCommand(transmapCmd)
}

func printTransMap(out io.Writer, data *adapter.SimulationData) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "range\t%s\n\n", data.Range())
	fmt.Fprintln(w, "set\tdirection\tcell\tbranch\tgid")

	tm := data.TransMap()
	for _, set := range slices.Sorted(maps.Keys(tm)) {
		ts := tm[set]

		coords := slices.SortedFunc(maps.Keys(ts.Transmitters), func(a, b gid.Coord) int {
			return gid.CompareKeys(gid.Key(a), gid.Key(b))
		})
		for _, c := range coords {
			fmt.Fprintf(w, "%s\ttransmit\t%d\t%d\t%d\n",
				set, c.Cell, c.Branch, ts.Transmitters[c])
		}

		for _, k := range slices.SortedFunc(maps.Keys(ts.Receivers), gid.CompareKeys) {
			fmt.Fprintf(w, "%s\treceive\t%d\t%d\t%d\n",
				set, k.Cell, k.Branch, ts.Receivers[k])
		}
	}

	return w.Flush()
}
