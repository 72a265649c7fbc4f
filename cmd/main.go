// hiring-service
//
// Applicant tracking for the JobMate hiring demo: pipelines of named stages,
// job postings, applications that move through stages with a timestamped
// history, progress reporting and LLM-assisted resume screening.
//
// Commands:
//   - serve  REST + gRPC servers and the optional deadline sweep
//   - export write the persisted-state snapshot as JSON
//   - screen run one screening batch for a job
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "hiring-service",
	Short:         "JobMate hiring pipeline and application progress service",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[hiring-service] Error: %v\n", err)
		os.Exit(1)
	}
}
