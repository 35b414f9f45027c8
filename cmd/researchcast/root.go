package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchcast/agent"
	"github.com/smallnest/researchcast/log"
)

type rootOptions struct {
	logLevel   string
	logFile    string
	configFile string

	logger  log.Logger
	closers []io.Closer

	// agentOptions are applied after the command's own agent options.
	agentOptions []agent.Option
}

func newRootCmd() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "researchcast",
		Short: "Turn a research topic into a report and a podcast",
		Long: `researchcast researches a topic with grounded web search, optionally
summarizes a video about it, writes a Markdown research report and renders a
two-host podcast discussion to a WAV file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error or none")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file, rotated at 10 MB")
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")

	cmd.AddCommand(
		newRunCmd(opts),
		newGraphCmd(),
		newConfigCmd(opts),
		newInspectCmd(),
	)
	return cmd
}

func (o *rootOptions) setupLogging(stderr io.Writer) error {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}

	logger := log.NewConsoleLogger(stderr, level)
	if o.logFile != "" {
		file := log.RotatingFile(o.logFile, 10)
		logger.AddOutput(file)
		o.closers = append(o.closers, file)
	}

	o.logger = logger
	log.SetDefaultLogger(logger)
	return nil
}

func (o *rootOptions) close() {
	for _, c := range o.closers {
		_ = c.Close()
	}
	o.closers = nil
}
