package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchcast/agent"
	"github.com/smallnest/researchcast/graph"
)

func newGraphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the research pipeline graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter := graph.NewExporter(agent.New().Graph())

			switch format {
			case "mermaid":
				fmt.Fprint(cmd.OutOrStdout(), exporter.DrawMermaid())
			case "dot":
				fmt.Fprint(cmd.OutOrStdout(), exporter.DrawDOT())
			default:
				return fmt.Errorf("unknown format %q: want mermaid or dot", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "output format: mermaid or dot")
	return cmd
}
