package main

import (
	"fmt"
	"os"

	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	flagConfig  string
	flagVerbose bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:           "textguard",
	Short:         "TF-IDF and logistic regression spam classifier",
	Long:          "textguard trains a spam classifier on a labelled message corpus and serves it from the command line, a web page and an SMTP content filter.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "output logs in JSON format")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(smtpCmd)
}

// Execute runs the command tree
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagBinding maps a command flag onto a config key
type flagBinding struct {
	flag string
	key  string
}

// setup loads the configuration, applies the flags the user set and
// builds the console logger
func setup(cmd *cobra.Command, bindings ...flagBinding) (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewFromFile(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd.Flags(), cfg, bindings)

	logger, err := logging.InitConsoleLogger(flagVerbose, flagJSONLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if used := cfg.GetViper().ConfigFileUsed(); used != "" {
		logger.Debug("Loaded configuration from file", zap.String("file", used))
	}
	return cfg, logger, nil
}

// setupDaemon is setup for long running commands, which log the way the
// configuration says unless --verbose asks for console debug output
func setupDaemon(cmd *cobra.Command, bindings ...flagBinding) (*config.Config, *zap.Logger, error) {
	if flagVerbose {
		return setup(cmd, bindings...)
	}
	cfg, err := config.NewFromFile(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd.Flags(), cfg, bindings)

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config, bindings []flagBinding) {
	v := cfg.GetViper()
	for _, b := range bindings {
		if f := flags.Lookup(b.flag); f != nil && f.Changed {
			v.Set(b.key, f.Value.String())
		}
	}
}
