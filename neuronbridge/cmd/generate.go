package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/neuronbridge/storage"
	"github.com/sarchlab/neuronbridge/storage/sqlitestore"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the network of the configuration into a SQLite file.",
	Long: "`generate` draws a random network from the network section of " +
		"the configuration and writes it to the db file. The file must not " +
		"exist.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, _ := cmd.Flags().GetString("db")
		if db == "" {
			db = cfg.DB
		}

		seed := cfg.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetInt64("seed")
		}

		return generate(cmd, db, seed)
	},
}

func init() {
	generateCmd.Flags().String("db", "", "output file, overrides the configuration")
	generateCmd.Flags().Int64("seed", 0, "random seed, overrides the configuration")
	rootCmd.AddCommand(generateCmd)
}

func generate(cmd *cobra.Command, db string, seed int64) error {
	mem, err := storage.Generate(cfg.Network, seed)
	if err != nil {
		return fmt.Errorf("generating network: %w", err)
	}

	store, err := sqlitestore.Create(db)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.Save(cmd.Context(), mem, mem.CellTypes())
	if err != nil {
		return fmt.Errorf("saving network: %w", err)
	}

	stats, err := mem.ChunkStats(cmd.Context())
	if err != nil {
		return err
	}

	placed, out := 0, 0
	for _, s := range stats {
		placed += s.Placed
		out += s.ConnectionsOut
	}

	logrus.WithFields(logrus.Fields{
		"db":          db,
		"chunks":      len(stats),
		"cells":       placed,
		"connections": out,
	}).Info("Generated network")

	return nil
}
