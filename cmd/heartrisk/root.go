package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/logger"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "heartrisk",
		Short:        "Heart disease risk assessment",
		Long:         "heartrisk scores a 13-field clinical record with a pre-trained model and writes an assessment report.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(newAssessCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger logs to stderr so report output on stdout stays clean.
func newLogger(cmd *cobra.Command) *zap.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	l, err := logger.New(level, "console", "heartrisk")
	if err != nil {
		return zap.NewNop()
	}
	return l
}
