// Command gateway serves GitHub Copilot usage data to the metrics dashboard.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// For testing
var osExit = os.Exit

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Copilot metrics gateway",
	Long:  `Backend for the Copilot metrics dashboard: resolves GitHub credentials, fetches and caches usage data, and serves it over HTTP.`,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(appTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		osExit(1)
	}
}
