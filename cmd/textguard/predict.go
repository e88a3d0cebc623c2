package main

import (
	"fmt"
	"strings"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/di"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict <message...>",
	Short: "Classify one message with the fitted model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	message := strings.Join(args, " ")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("please enter a message to analyze")
	}

	container, err := di.BuildContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(s *core.SpamClassifierService, closers *di.Closers) error {
		defer closers.Close()

		result, err := s.Classify(cmd.Context(), message)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Prediction: %s\n", title(result.Label.String()))
		fmt.Fprintf(out, "Spam probability: %.2f%%\n", result.Probability*100)
		return nil
	})
}
