package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bugtrack/internal/cli"
	"bugtrack/internal/cli/commands"
	"bugtrack/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "bugtrack",
		Short:         "Bug tracker synchronization for end-to-end test runs",
		Long:          `Read the traces of an end-to-end test run and keep the bug tracker in step: open an issue for a new failure, update it when the scenario fails on another step, and close it once the test passes again.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
