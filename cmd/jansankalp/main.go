package main

import (
	"context"
	"fmt"
	"os"

	"github.com/abx15/JanSankalp-AI-sub002/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           "jansankalp",
		Short:         "JanSankalp complaint pipeline: API and event bridge worker",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "path to the YAML config file")

	rootCmd.AddCommand(apiCmd(&configPath))
	rootCmd.AddCommand(workerCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func apiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the HTTP API, realtime websocket hub and gRPC health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := bootstrap.NewRuntime(cmd.Context(), *configPath)
			if err != nil {
				return fmt.Errorf("bootstrap api runtime: %w", err)
			}
			return runtime.RunAPI(cmd.Context())
		},
	}
}

func workerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the event bridge, outbox relay and notification fanout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := bootstrap.NewRuntime(cmd.Context(), *configPath)
			if err != nil {
				return fmt.Errorf("bootstrap worker runtime: %w", err)
			}
			return runtime.RunWorker(cmd.Context())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
