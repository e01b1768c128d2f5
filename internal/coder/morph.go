package coder

import (
	"context"
	"fmt"
	"strings"

	"github.com/hackrevamp/revamp/internal/llm"
)

// MorphEditor merges an instructed edit into an existing file body through
// the Morph fast-apply model. It is an optional collaborator: without it the
// coder falls back to whole-file replacement content from the plan.
type MorphEditor struct {
	llm llm.Client
}

// NewMorphEditor creates an editor backed by the Morph API.
func NewMorphEditor(apiKey string) *MorphEditor {
	return &MorphEditor{llm: llm.NewMorphClient(apiKey, "")}
}

// NewMorphEditorFrom wraps an existing model client, used in tests.
func NewMorphEditorFrom(client llm.Client) *MorphEditor {
	return &MorphEditor{llm: client}
}

// Apply merges update into code per instruction and returns the full new
// file body. The tagged message layout is the apply model's input contract.
func (m *MorphEditor) Apply(ctx context.Context, code, instruction, update string) (string, error) {
	user := fmt.Sprintf("<instruction>%s</instruction>\n<code>%s</code>\n<update>%s</update>",
		instruction, code, update)
	merged, err := m.llm.Complete(ctx, "", user)
	if err != nil {
		return "", fmt.Errorf("applying edit: %w", err)
	}
	return stripFences(merged), nil
}

// stripFences removes a surrounding markdown code fence, which apply models
// occasionally add despite instructions.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSuffix(trimmed, "\n") + "\n"
}
