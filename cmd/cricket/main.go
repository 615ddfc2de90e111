package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/cmd/cricket/cmds"
)

var rootCmd = &cobra.Command{
	Use:   "cricket",
	Short: "Converse with language models inside org-style thread files",
	Long: `cricket keeps conversations in plain text outlines. Every heading is a
turn; responding at a node walks the outline up to the root, sends the
collected turns to a model and streams the reply back into the file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initLogging(cmd)
	},
}

func initLogging(cmd *cobra.Command) error {
	levelName := cmd.Flag("log-level").Value.String()
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", levelName)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/cricket/config.yaml)")

	cmds.RegisterCommands(rootCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
