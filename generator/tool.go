package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	AdToolName        = "generate_ad"
	AdToolDescription = "Generate an ad copy given the platform (Facebook, Instagram, LinkedIn, or Google Ads)"
)

// Tool is a capability the agent may decide to call.
type Tool interface {
	Spec() ToolSpec
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// AdGenerator writes copy for one platform from the run's context block.
type AdGenerator struct {
	llm          LLMClient
	contextBlock string
	log          *CallLog
}

func NewAdGenerator(llm LLMClient, contextBlock string, log *CallLog) *AdGenerator {
	return &AdGenerator{llm: llm, contextBlock: contextBlock, log: log}
}

// Generate records the call and asks the model for copy. Errors are returned as is;
// nothing is retried.
func (g *AdGenerator) Generate(ctx context.Context, platform string) (string, error) {
	rec := g.log.Record(AdToolName, platform)
	slog.Info(fmt.Sprintf("FUNCTION CALLED: %s(platform='%s') at %s", rec.Function, rec.Platform, rec.Time))

	raw, err := g.llm.Complete(ctx, BuildAdPrompt(platform, g.contextBlock))
	if err != nil {
		slog.Error("AdGenerator.Generate: completion failed", "platform", platform, "error", err)
		return "", fmt.Errorf("generate ad for %s: %w", platform, err)
	}
	text := strings.TrimSpace(raw)
	slog.Debug("AdGenerator.Generate: completion received", "platform", platform, "length", len(text))
	return text, nil
}

// AdTool exposes AdGenerator to the agent under the generate_ad name.
type AdTool struct {
	gen *AdGenerator
}

func NewAdTool(gen *AdGenerator) *AdTool {
	return &AdTool{gen: gen}
}

type adToolArgs struct {
	Platform *string `json:"platform"`
}

func (t *AdTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        AdToolName,
		Description: AdToolDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"platform": map[string]any{
					"type":        "string",
					"description": "Advertising platform to write for, e.g. Facebook, Instagram, LinkedIn or Google Ads",
				},
			},
			"required": []string{"platform"},
		},
	}
}

// Call decodes the model's arguments and runs the generator. Any platform value,
// blank included, is passed through. Undecodable arguments or a missing platform
// key are reported back to the model and do not fail the run.
func (t *AdTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a adToolArgs
	if err := json.Unmarshal(args, &a); err != nil {
		slog.Warn("AdTool.Call: invalid arguments", "args", formatToolArgumentsForLog(args), "error", err)
		return fmt.Sprintf("invalid arguments for %s: %v", AdToolName, err), nil
	}
	if a.Platform == nil {
		slog.Warn("AdTool.Call: missing platform", "args", formatToolArgumentsForLog(args))
		return "platform is required", nil
	}
	return t.gen.Generate(ctx, *a.Platform)
}
