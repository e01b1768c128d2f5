package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/workflow"
)

var (
	flagFork   bool
	flagBranch string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Produce a strategy and push the first commits",
	Long: `Run the full pipeline: strategy plus implementation. The planned edits
are committed to a new branch, on a fork when --fork is set.`,
	RunE: runGenerate,
}

func init() {
	addInputFlags(generateCmd)
	generateCmd.Flags().BoolVar(&flagFork, "fork", false, "Fork the repository before committing")
	generateCmd.Flags().StringVar(&flagBranch, "branch", "", "Branch name for the commits (default from REVAMP_BRANCH)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateForImplementation(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	branch := flagBranch
	if branch == "" {
		branch = cfg.DefaultBranch
	}

	res, err := runPipeline(cfg, workflow.Request{
		RepoURL:      flagGitHubURL,
		HackathonURL: flagHackathonURL,
		Context:      flagContext,
		Topic:        flagTopic,
		Order:        workflow.Order(flagOrder),
		Implement:    true,
		Fork:         flagFork,
		Branch:       branch,
	})
	if err != nil {
		return err
	}

	printStrategy(res)
	fmt.Println()

	if res.ImplementErr != "" {
		fmt.Println(color.YellowString("Implementation failed: %s", res.ImplementErr))
		fmt.Println("The strategy above is still usable; rerun generate to retry the commits.")
		return nil
	}

	impl := res.Implementation
	fmt.Printf("%s %d commits on %s\n", color.GreenString("Pushed:"), impl.Commits, impl.Repo)
	fmt.Printf("%s %s\n", color.GreenString("Branch:"), impl.Branch)
	if impl.Fork != "" {
		fmt.Printf("%s %s\n", color.GreenString("Fork:"), impl.Fork)
	}
	fmt.Printf("%s %s\n", color.GreenString("Files:"), strings.Join(impl.Files, ", "))
	return nil
}
