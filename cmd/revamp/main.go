// Revamp - hackathon revamp agent
//
// Turns an existing open-source project into a hackathon entry: analyze the
// repo, research the hackathon, produce a strategy, optionally push the
// first commits.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "revamp",
	Short: "Revamp - hackathon strategy agent",
	Long: `Revamp turns existing open-source projects into hackathon entries.

  revamp analyze --github-url owner/repo --hackathon-url <url>   Produce a strategy
  revamp generate --github-url owner/repo --fork                 Strategy plus commits
  revamp serve                                                   Start the API server
  revamp runs                                                    List runs on the server
  revamp status <id>                                             Check a run's status`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("REVAMP_SERVER", "http://localhost:7080"), "Revamp server URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
