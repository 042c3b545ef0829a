package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reeledit/composition"
	"reeledit/fcp"
	"reeledit/script"
	"reeledit/timeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a timeline from a script and export it",
	Long: `Apply the append operations in a YAML script to an empty timeline and
write the resulting composition as FCPXML, or print it as JSON with --json.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("script", "", "YAML script of append operations (required)")
	buildCmd.Flags().StringP("output", "o", "timeline.fcpxml", "Output file")
	buildCmd.Flags().Bool("json", false, "Print the composition as JSON instead of writing FCPXML")
	buildCmd.MarkFlagRequired("script")
}

// loadScriptSnapshot builds the timeline a script describes, starting from
// the configured store defaults.
func loadScriptSnapshot(path string) (timeline.Snapshot, error) {
	s, err := script.Load(path)
	if err != nil {
		return timeline.Snapshot{}, err
	}
	store := timeline.NewStore(s.StoreOptions(
		timeline.WithClipSource(cfg.ClipSource),
		timeline.WithClipDuration(cfg.ClipDuration),
		timeline.WithTextDuration(cfg.TextDuration),
		timeline.WithLogger(log),
	)...)
	snap := s.Apply(store)
	log.Debugw("script applied", "path", path, "ops", len(s.Ops), "total", snap.TotalDuration)
	return snap, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("script")
	output, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")

	snap, err := loadScriptSnapshot(path)
	if err != nil {
		return err
	}
	comp := composition.New(snap)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(comp)
	}

	if !strings.HasSuffix(strings.ToLower(output), ".fcpxml") {
		output += ".fcpxml"
	}
	ml, err := fcp.FromComposition(comp, fcp.ExportOptions{})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := fcp.WriteToFile(ml, output); err != nil {
		return err
	}

	log.Infow("fcpxml written", "path", output, "segments", len(comp.Segments), "frames", comp.DurationInFrames)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d segments, %.2fs)\n", output, len(comp.Segments), comp.DurationSeconds())
	return nil
}

