package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/textguard/internal/adapters/filter"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var filterCmd = &cobra.Command{
	Use:   "filter [email-file]",
	Short: "Classify one RFC 5322 email read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFilter,
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
		logger.Info("Reading email from file", zap.String("file", args[0]))
	} else {
		logger.Info("Reading email from stdin")
	}

	container, err := di.BuildContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(func(s *core.SpamClassifierService, closers *di.Closers) error {
		defer closers.Close()

		f := filter.NewCliFilter(s, logger, flagVerbose)
		f.SetOutput(cmd.OutOrStdout())
		_, err := f.ProcessReader(cmd.Context(), r)
		return err
	})
}
