package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/recjit/jit"
	"github.com/wippyai/recjit/record"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "recjit",
		Short: "Record-array compiler tooling",
		Long: `recjit converts record layout descriptors and runs record-array
functions through both the reference interpreter and the WebAssembly backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			record.SetLogger(logger)
			jit.SetLogger(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.AddCommand(newLayoutCmd(), newParityCmd())
	return root
}

// newLogger builds a development logger at debug level and a production
// logger otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	conf := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		conf = zap.NewDevelopmentConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	return conf.Build()
}
