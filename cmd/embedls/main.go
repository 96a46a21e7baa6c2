package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/cmd/embedls/check"
	"github.com/walteh/embedls/cmd/embedls/format"
	"github.com/walteh/embedls/cmd/embedls/inspect"
	"github.com/walteh/embedls/cmd/embedls/rename"
	logging "github.com/walteh/embedls/pkg/debug"
	"github.com/walteh/embedls/pkg/session"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	opts := &session.Options{}
	var debugLogging bool

	rootCmd := &cobra.Command{
		Use:           "embedls",
		Short:         "Language tooling for files that embed other languages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().StringVarP(&opts.Dir, "dir", "C", ".", "project root")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file relative to the project root")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if debugLogging {
			level = zerolog.DebugLevel
		}
		logger := logging.NewLogger(os.Stderr, level, !color.NoColor)
		cmd.SetContext(logger.WithContext(cmd.Context()))
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(inspect.NewInspectCommand(opts))
	rootCmd.AddCommand(check.NewCheckCommand(opts))
	rootCmd.AddCommand(rename.NewRenameCommand(opts))
	rootCmd.AddCommand(format.NewFormatCommand(opts))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
