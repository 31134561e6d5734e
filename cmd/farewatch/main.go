// Package main is the entry point for the farewatch service.
//
//	@title						Farewatch API
//	@version					1.0.0
//	@description				A flight fare watch service that sweeps a flexible date window against the Amadeus pricing API and reports the best fares to a Telegram chat.
//
//	@contact.name				API Support
//	@contact.url				https://github.com/farewatch/farewatch/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@schemes					http https
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the farewatch CLI.
var rootCmd = &cobra.Command{
	Use:   "farewatch",
	Short: "Flight fare watch over a flexible date window",
	Long: `farewatch sweeps every departure/return date pair inside a flexible
travel window against the Amadeus flight-offers API, filters and ranks the
returned fares, and delivers a summary to a Telegram chat.

Run "farewatch serve" for the long-running service with the HTTP API and
Telegram webhook, or "farewatch search" for a one-shot search from the
command line.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
