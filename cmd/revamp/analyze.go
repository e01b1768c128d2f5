package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/workflow"
)

var (
	flagGitHubURL    string
	flagHackathonURL string
	flagContext      string
	flagTopic        string
	flagOrder        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Produce a revamp strategy",
	Long: `Analyze a project and a hackathon and print the revamp strategy.

Supply --github-url, --hackathon-url, or both; with only a --topic the agent
discovers candidates on its own.`,
	RunE: runAnalyze,
}

func init() {
	addInputFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagGitHubURL, "github-url", "", "GitHub repository (URL or owner/repo)")
	cmd.Flags().StringVar(&flagHackathonURL, "hackathon-url", "", "Hackathon page URL")
	cmd.Flags().StringVar(&flagContext, "context", "", "Extra context for the strategist (team size, constraints)")
	cmd.Flags().StringVar(&flagTopic, "topic", "", "Discovery topic when no URLs are given")
	cmd.Flags().StringVar(&flagOrder, "order", string(workflow.OrderProjectsFirst),
		"Discovery order with --topic: projects-first or hackathons-first")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	res, err := runPipeline(cfg, workflow.Request{
		RepoURL:      flagGitHubURL,
		HackathonURL: flagHackathonURL,
		Context:      flagContext,
		Topic:        flagTopic,
		Order:        workflow.Order(flagOrder),
	})
	if err != nil {
		return err
	}

	printStrategy(res)
	return nil
}

// runPipeline builds the pipeline and executes one request with signal-based
// cancellation.
func runPipeline(cfg *config.Config, req workflow.Request) (*workflow.Result, error) {
	p, err := buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return p.Run(ctx, req)
}

func printStrategy(res *workflow.Result) {
	label := color.New(color.FgCyan, color.Bold)

	if res.Repo != "" {
		fmt.Printf("%s %s\n", color.GreenString("Project:"), res.Repo)
	}
	if res.HackathonURL != "" {
		fmt.Printf("%s %s\n", color.GreenString("Hackathon:"), res.HackathonURL)
	}
	if res.Repo == "" && res.HackathonURL == "" {
		fmt.Println(color.YellowString("No project or hackathon resolved; strategy is generic."))
	}

	for _, section := range []struct{ title, body string }{
		{"Positioning", res.Strategy.Positioning},
		{"Novel Features", res.Strategy.Features},
		{"Technical Improvements", res.Strategy.Improvements},
		{"Demo Plan", res.Strategy.DemoPlan},
	} {
		fmt.Println()
		label.Println(section.title)
		fmt.Println(section.body)
	}
}
