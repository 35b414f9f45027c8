package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchcast/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the configuration a run would use: the defaults overlaid with the
--config file and the environment (SEARCHMODEL or SEARCH_MODEL, TTSRATE or
TTS_RATE, and so on).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg config.Configuration
				err error
			)
			if root.configFile == "" {
				cfg, err = config.FromEnvironment()
			} else {
				cfg, err = config.Resolve(root.configFile, config.Options{})
			}
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
