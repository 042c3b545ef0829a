package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reeledit/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the timeline block layout for a script",
	Long:  "Apply a YAML script and print where each timeline block is drawn on the track.",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().String("script", "", "YAML script of append operations (required)")
	layoutCmd.MarkFlagRequired("script")
}

func runLayout(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("script")
	snap, err := loadScriptSnapshot(path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tROW\tLEFT\tWIDTH\tTOP")
	for _, b := range layout.Blocks(snap) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", b.ID, b.Label, b.Row, b.LeftCSS(), b.WidthCSS(), b.TopCSS())
	}
	fmt.Fprintf(tw, "\ntotal\t%d frames\n", snap.TotalDuration)
	return tw.Flush()
}
