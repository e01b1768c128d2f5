package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs on the server",
	RunE:  runRuns,
}

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Check a run's status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(statusCmd)
}

type runView struct {
	ID           string `json:"id"`
	Repo         string `json:"repo"`
	Hackathon    string `json:"hackathon"`
	Topic        string `json:"topic"`
	Status       string `json:"status"`
	Strategy     string `json:"strategy"`
	Branch       string `json:"branch"`
	Fork         string `json:"fork"`
	Commits      int    `json:"commits"`
	Error        string `json:"error"`
	ImplementErr string `json:"implement_error"`
	CreatedAt    string `json:"created_at"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(serverURL + "/api/runs")
	if err != nil {
		return fmt.Errorf("connecting to server: %w\nIs the server running? Start it with: revamp serve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body))
	}

	var runs []runView
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPO\tHACKATHON\tSTATUS\tCOMMITS")
	for _, r := range runs {
		repo := orDash(r.Repo)
		hackathon := orDash(r.Hackathon)
		if len(hackathon) > 40 {
			hackathon = hackathon[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, repo, hackathon, statusIcon(r.Status), r.Commits)
	}
	return w.Flush()
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(serverURL + "/api/runs/" + args[0])
	if err != nil {
		return fmt.Errorf("connecting to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("run %s not found", args[0])
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body))
	}

	var r runView
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	fmt.Printf("Run:       %s\n", r.ID)
	fmt.Printf("Status:    %s\n", statusIcon(r.Status))
	fmt.Printf("Project:   %s\n", orDash(r.Repo))
	fmt.Printf("Hackathon: %s\n", orDash(r.Hackathon))
	if r.Branch != "" {
		fmt.Printf("Branch:    %s (%d commits)\n", r.Branch, r.Commits)
	}
	if r.Fork != "" {
		fmt.Printf("Fork:      %s\n", r.Fork)
	}
	if r.Error != "" {
		fmt.Printf("Error:     %s\n", r.Error)
	}
	if r.ImplementErr != "" {
		fmt.Printf("Implementation error: %s\n", r.ImplementErr)
	}
	if r.Strategy != "" {
		fmt.Printf("\n%s\n", r.Strategy)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func statusIcon(status string) string {
	switch status {
	case "pending":
		return "⏳ pending"
	case "running":
		return "🔄 running"
	case "complete":
		return "✅ complete"
	case "error":
		return "❌ error"
	default:
		return status
	}
}
