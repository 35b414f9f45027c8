package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchcast/audio"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.wav>",
		Short: "Print the header of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := audio.ReadFileHeader(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, args[0])
			printField(out, "Channels", info.Channels)
			printField(out, "Sample rate", fmt.Sprintf("%d Hz", info.SampleRate))
			printField(out, "Bits/sample", info.BitsPerSample)
			printField(out, "Byte rate", info.ByteRate)
			printField(out, "Block align", info.BlockAlign)
			printField(out, "Data size", info.DataSize)
			printField(out, "Duration", fmt.Sprintf("%.2fs", info.Duration()))
			return nil
		},
	}
}
