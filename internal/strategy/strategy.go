// Package strategy turns the available summaries into the four-section
// revamp strategy document, the terminal artifact of the analysis path.
package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hackrevamp/revamp/internal/analyzer"
	"github.com/hackrevamp/revamp/internal/llm"
	"github.com/hackrevamp/revamp/internal/prompts"
	"github.com/hackrevamp/revamp/internal/report"
	"github.com/hackrevamp/revamp/internal/research"
)

// Document is the strategy deliverable. All four sections are always
// populated: when source information is thin the model (or our defaults)
// fills them with clearly-general recommendations.
type Document struct {
	Positioning  string
	Features     string
	Improvements string
	DemoPlan     string
}

// Section defaults used when even the model leaves a hole.
const (
	defaultPositioning = "Position the project around its strongest existing capability and frame the hackathon entry as a focused, demo-ready slice of it."
	defaultFeatures    = "Add one memorable, judge-facing feature that showcases the project's core value in under a minute."
	defaultImprovement = "Tighten setup and reliability: one-command bootstrap, a passing test suite, and an obvious entry point for reviewers."
	defaultDemoPlan    = "Rehearse a three-minute live demo: the problem in one sentence, the feature in action, and the architecture slide last."
)

// Agent creates strategy documents. The strategy model is a required
// collaborator: its failure is terminal for the request.
type Agent struct {
	llm     llm.Client
	prompts *prompts.Registry
}

// New creates a strategy Agent.
func New(client llm.Client, registry *prompts.Registry) *Agent {
	return &Agent{llm: client, prompts: registry}
}

// Create builds the strategy document from whichever summaries are present.
// Both may be nil (fully generic fallback); at least the prompt context
// explains what is known. extra carries caller-supplied free text that is
// not already part of a summary.
func (a *Agent) Create(ctx context.Context, repo *analyzer.Summary, hack *research.Summary, extra string) (*Document, error) {
	system := a.prompts.Get(ctx, prompts.IDStrategy)

	var b strings.Builder
	b.WriteString("Create a winning hackathon revamp strategy from the following information.\n\n")
	switch {
	case repo != nil && hack != nil:
		b.WriteString(repo.Prompt())
		b.WriteString("\n")
		b.WriteString(hack.Prompt())
	case repo != nil:
		b.WriteString(repo.Prompt())
		b.WriteString("\nNo hackathon information is available; target a plausible hackathon for this project's domain.\n")
	case hack != nil:
		b.WriteString(hack.Prompt())
		b.WriteString("\nNo project information is available; recommend the kind of open-source project that would fit, and strategize for it.\n")
	default:
		b.WriteString("No project or hackathon information is available. Produce a generic but actionable strategy for revamping an open-source project for a hackathon.\n")
	}
	if extra != "" {
		b.WriteString("\nAdditional context from the caller:\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	response, err := a.llm.Complete(ctx, system, b.String())
	if err != nil {
		return nil, fmt.Errorf("strategy generation: %w", err)
	}

	return parse(response), nil
}

// parse extracts the four sections, synthesizing defaults for any the model
// skipped so the document contract always holds.
func parse(markdown string) *Document {
	sections := report.Sections(markdown)
	return &Document{
		Positioning:  report.Pick(sections, defaultPositioning, "Positioning", "Strategic Positioning"),
		Features:     report.Pick(sections, defaultFeatures, "Novel Features", "Features"),
		Improvements: report.Pick(sections, defaultImprovement, "Technical Improvements", "Improvements"),
		DemoPlan:     report.Pick(sections, defaultDemoPlan, "Demo Plan", "Demo and Presentation", "Presentation"),
	}
}

// Markdown renders the document in its canonical four-section form.
func (d *Document) Markdown() string {
	return fmt.Sprintf("## Positioning\n%s\n\n## Novel Features\n%s\n\n## Technical Improvements\n%s\n\n## Demo Plan\n%s\n",
		d.Positioning, d.Features, d.Improvements, d.DemoPlan)
}
