package main

import (
	"fmt"

	"github.com/mikey/textguard/internal/di"
	"github.com/mikey/textguard/internal/ports"
	"github.com/spf13/cobra"
)

var smtpCmd = &cobra.Command{
	Use:   "smtp",
	Short: "Run the SMTP content filter",
	Long:  "Accepts mail over SMTP, adds spam headers and relays it to the next hop, or rejects spam when server.block_spam is set.",
	Args:  cobra.NoArgs,
	RunE:  runSMTP,
}

func init() {
	f := smtpCmd.Flags()
	f.String("listen", "", "listen address (default server.listen_address)")
	f.Bool("block", false, "reject spam instead of tagging it")
	f.String("relay", "", "next hop address")
	f.Int("relay-port", 10026, "next hop port")
}

func runSMTP(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setupDaemon(cmd,
		flagBinding{"listen", "server.listen_address"},
		flagBinding{"block", "server.block_spam"},
		flagBinding{"relay", "server.relay.address"},
		flagBinding{"relay-port", "server.relay.port"},
	)
	if err != nil {
		return err
	}
	defer logger.Sync()

	v := cfg.GetViper()
	v.Set("server.filter_type", "smtp")
	if cmd.Flags().Changed("relay") {
		v.Set("server.relay.enabled", true)
	}

	container, err := di.BuildContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(func(filter ports.EmailFilter, closers *di.Closers) error {
		return runUntilSignal(logger, filter, closers)
	})
}
