// Package main provides the entry point for the job feed HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobstinder",
	Short: "Job feed HTTP API server",
	Long:  "Ranks job postings against a user's resume-derived preference profile and serves them as a swipeable feed via REST and websocket endpoints.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
