package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reeledit/config"
	"reeledit/logging"
)

var (
	verbose bool
	envFile string

	cfg config.Config
	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "reeledit",
	Short: "A minimal browser video editor",
	Long: `Reeledit serves a single-page video editor with an append-only timeline
of clips and text overlays, a live preview player and a play-head that tracks
playback. Timelines can also be built from YAML scripts and exported as FCPXML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logging.NewLogger(verbose)

		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if !cfg.EnvFileLoaded && cmd.Flags().Changed("env-file") {
			log.Warnw("env file not found, using environment", "path", envFile)
		}
		log.Debugw("config loaded", "addr", cfg.Addr, "blockedMaxWidth", cfg.BlockedMaxWidth)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(inspectCmd)
}
