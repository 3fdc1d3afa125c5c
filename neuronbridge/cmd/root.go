// Package cmd provides the command-line interface of neuronbridge.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/neuronbridge/config"
)

var (
	configFile string
	envFile    string
	logLevel   string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neuronbridge",
	Short: "neuronbridge prepares stored networks on parallel engine ranks.",
	Long: `neuronbridge generates networks into SQLite files, distributes ` +
		`them over engine ranks, allocates the spike GIDs and runs the ` +
		`simulations described in a YAML configuration.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env",
		"file holding environment overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"log level, overrides the configuration")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg = config.Default()
		if err = cfg.ApplyEnv(); err == nil {
			err = cfg.Validate()
		}
	}

	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log = logLevel
	}

	level, err := logrus.ParseLevel(cfg.Log)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. An interrupt cancels the running command. Registered exit
// handlers run before the process ends.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
