package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server. Every connection gets its own menu session;
all users share the server's scoreboard and training runs.

Without --host-key a key is generated at ~/.flappy/host_key.

Examples:
  flappy serve
  flappy serve --ssh :2222
  flappy serve --host-key ./host_key --db ./flappy.db

Connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	def := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", def.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (generated if not set)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", def.IdleTimeout, "Idle time before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	if _, _, err := loadConfigs(); err != nil {
		return err
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		TickRate:    flagFPS,
		IdleTimeout: flagIdleTimeout,
	}, logger)
	if err != nil {
		return err
	}
	return server.ListenAndServe()
}
