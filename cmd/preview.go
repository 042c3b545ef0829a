package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reeledit/browser"
)

var previewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Check the editor's display mode in a headless browser",
	Long: `Open a running editor in headless Chromium at the given viewport size and
report whether it shows the editor or the unsupported-device message.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("width", 1280, "Viewport width in pixels")
	previewCmd.Flags().Int("height", 800, "Viewport height in pixels")
	previewCmd.Flags().String("screenshot", "", "Save a PNG screenshot to this file")
}

func runPreview(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	shot, _ := cmd.Flags().GetString("screenshot")

	res, err := browser.Preview(cmd.Context(), args[0], browser.PreviewOptions{
		Width:      width,
		Height:     height,
		Screenshot: shot,
	}, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%dx%d: %s (session %s)\n", res.Width, res.Height, res.Mode, res.SessionID)
	if res.Screenshot != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Screenshot saved to %s\n", res.Screenshot)
	}
	return nil
}
