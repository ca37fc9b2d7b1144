package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kovidgoyal/qcms"
	"github.com/spf13/cobra"
)

var _ = fmt.Print

var logger = slog.New(slog.DiscardHandler)

func root_command() *cobra.Command {
	root := &cobra.Command{
		Use:           "qcms",
		Short:         "Inspect ICC profiles and colour convert images",
		Version:       qcms.Version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "Log debug information to stderr")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if *verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}
	root.AddCommand(info_command(), convert_command())
	return root
}

func main() {
	if err := root_command().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
