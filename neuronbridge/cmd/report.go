package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/neuronbridge/datarecording"
	"github.com/sarchlab/neuronbridge/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report file",
	Short: "Summarize a recorded run.",
	Long: "`report` reads a file written by `run --record` and prints the GID " +
		"blocks, the completed runs and the traced tasks it holds.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		simulation, _ := cmd.Flags().GetString("simulation")

		return report(cmd, reader, simulation)
	},
}

func init() {
	reportCmd.Flags().StringP("simulation", "s", "", "only report this simulation")
	rootCmd.AddCommand(reportCmd)
}

func report(cmd *cobra.Command, reader datarecording.DataReader, simulation string) error {
	reader.MapTable(datarecording.BlockTable, datarecording.BlockEntry{})
	reader.MapTable(datarecording.SummaryTable, datarecording.SummaryEntry{})
	reader.MapTable(tracing.TaskTable, tracing.TaskEntry{})

	params := datarecording.QueryParams{OrderBy: "Simulation, Rank, First"}
	if simulation != "" {
		params.Where = "Simulation = ?"
		params.Args = []any{simulation}
	}

	blocks, _, err := reader.Query(cmd.Context(), datarecording.BlockTable, params)
	if err != nil {
		return err
	}

	summaries, _, err := reader.Query(cmd.Context(), datarecording.SummaryTable,
		datarecording.QueryParams{OrderBy: "Run, Rank"})
	if err != nil {
		return err
	}

	tasks, _, err := reader.Query(cmd.Context(), tracing.TaskTable,
		datarecording.QueryParams{OrderBy: "Location, StartTime"})
	if err != nil {
		return err
	}

	return printReport(cmd.OutOrStdout(), blocks, summaries, tasks)
}

func printReport(out io.Writer, blocks, summaries, tasks []any) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "simulation\trank\tset\tfirst\tsize")
	for _, e := range blocks {
		b := e.(*datarecording.BlockEntry)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\n", b.Simulation, b.Rank, b.Set, b.First, b.Size)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "run\trank\tsimulations\ttime (ms)\twall (s)")
	for _, e := range summaries {
		s := e.(*datarecording.SummaryEntry)
		fmt.Fprintf(w, "%s\t%d\t%s\t%g\t%.3f\n", s.Run, s.Rank, s.Simulations, s.Time, s.WallSeconds)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "where\tkind\twhat\twall (s)")
	for _, e := range tasks {
		t := e.(*tracing.TaskEntry)
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n", t.Location, t.Kind, t.What, t.EndTime-t.StartTime)
	}

	return w.Flush()
}
