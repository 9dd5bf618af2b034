package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "syncd",
	Short: "University sync daemon: validates credentials and extracts course data from Moodle deployments",
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
