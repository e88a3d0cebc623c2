package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/textguard/internal/di"
	"github.com/mikey/textguard/internal/social"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flags di.SocialFlags

var rootCmd = &cobra.Command{
	Use:   "social-assistant",
	Short: "Sentiment analysis and content suggestions for social media posts",
	Long: `social-assistant scores the sentiment of your text or of fetched posts
and suggests what to write next, from an interactive menu.

Pass --test-input one or more times to run the menu non-interactively.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.ConfigFile, "config", "", "path to config file")
	f.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	f.BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")
	f.StringArrayVar(&flags.TestInputs, "test-input", nil, "scripted menu input, repeatable")
	f.StringVar(&flags.Provider, "provider", "", "sentiment provider: vader, openai, gemini or bedrock")
	f.StringVar(&flags.Source, "source", "", "post source: twitter, feed or none")
	f.IntVar(&flags.Keywords, "keywords", 0, "number of keywords to extract")
}

func run(cmd *cobra.Command, _ []string) error {
	flags.Out = cmd.OutOrStdout()

	container, err := di.BuildSocialContainer(&flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(app *social.App, logger *zap.Logger, closers *di.Closers) error {
		defer logger.Sync()
		defer closers.Close()

		if len(flags.TestInputs) > 0 {
			logger.Debug("Running scripted session", zap.Int("inputs", len(flags.TestInputs)))
			return app.RunScripted(ctx, flags.TestInputs)
		}
		return app.Run(ctx, cmd.InOrStdin())
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
