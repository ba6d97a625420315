// Package main provides the entry point for the Venue Scout CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "venue_scout",
	Short: "Venue Scout schedule extractor",
	Long:  "Venue Scout extracts recurring karaoke event schedules from social-media venue pages, groups, and photo posts, normalizing them into structured schedule records.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
