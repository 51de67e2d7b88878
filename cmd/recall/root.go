package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recall/internal/version"
)

// newRootCmd builds the recall command tree.
func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "recall",
		Short: "Multimodal semantic search service",
		Long: `recall indexes text and images into Qdrant collections and serves filtered
semantic search over them.

Examples:
  # Run the HTTP API
  recall serve

  # Run the embedding worker pool
  recall worker`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// A missing .env file is not an error.
			_ = godotenv.Load(envFile)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the config")

	root.AddCommand(newServeCmd(), newWorkerCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
