package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reeledit/fcp"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.fcpxml>",
	Short: "Display the storyline of an FCPXML file",
	Long:  "Parse an FCPXML file and list each sequence's spine elements in offset order.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ml, err := fcp.ParseFCPXML(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "FCPXML %s: %d formats, %d assets, %d effects\n",
		ml.Version, len(ml.Resources.Formats), len(ml.Resources.Assets), len(ml.Resources.Effects))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, event := range ml.Library.Events {
		for _, project := range event.Projects {
			for _, seq := range project.Sequences {
				fmt.Fprintf(tw, "\n%s / %s\t%d frames\n", event.Name, project.Name, fcp.ParseFrames(seq.Duration))
				fmt.Fprintln(tw, "OFFSET\tDURATION\tKIND\tNAME")
				for _, el := range seq.Spine.Elements() {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", el.Offset, el.Duration, el.Kind, el.Name)
				}
			}
		}
	}
	return tw.Flush()
}
