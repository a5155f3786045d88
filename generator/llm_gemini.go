package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiLLM implements LLMClient on the Google GenAI SDK.
type GeminiLLM struct {
	Model  string
	client *genai.Client
}

func NewGeminiLLM(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: provide llm.api_key or GEMINI_API_KEY", ErrMissingAPIKey)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiLLM{Model: model, client: client}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	contents := toGeminiContents(prompt.History)
	contents = append(contents, genai.NewContentFromText(prompt.User, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if prompt.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrNoChoices)
	}
	return candidateText(resp.Candidates[0]), nil
}

func (g *GeminiLLM) Converse(ctx context.Context, conv Conversation, tools []ToolSpec) (Reply, error) {
	cfg := &genai.GenerateContentConfig{}
	if conv.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(conv.System, genai.RoleUser)
	}
	if len(tools) > 0 {
		var decls []*genai.FunctionDeclaration
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.Model, toGeminiContents(conv.Messages), cfg)
	if err != nil {
		return Reply{}, fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Reply{}, fmt.Errorf("gemini: %w", ErrNoChoices)
	}

	cand := resp.Candidates[0]
	reply := Reply{Content: candidateText(cand)}
	if cand.Content == nil {
		return reply, nil
	}
	for _, part := range cand.Content.Parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		fc := part.FunctionCall
		args, err := json.Marshal(fc.Args)
		if err != nil {
			return Reply{}, fmt.Errorf("gemini: encode function args: %w", err)
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        fc.ID,
			Name:      fc.Name,
			Arguments: args,
			Signature: part.ThoughtSignature,
		})
	}
	return reply, nil
}

// candidateText joins the visible text parts of a candidate. Thought parts and
// function calls are left out.
func candidateText(cand *genai.Candidate) string {
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought || part.FunctionCall != nil {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func toGeminiContents(history []Message) []*genai.Content {
	var contents []*genai.Content
	for _, h := range history {
		switch h.Role {
		case RoleAssistant:
			var parts []*genai.Part
			if h.Content != "" {
				parts = append(parts, genai.NewPartFromText(h.Content))
			}
			for _, tc := range h.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal(tc.Arguments, &args)
				parts = append(parts, &genai.Part{
					FunctionCall:     &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
					ThoughtSignature: tc.Signature,
				})
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case RoleTool:
			part := genai.NewPartFromFunctionResponse(h.ToolName, map[string]any{"output": h.Content})
			part.FunctionResponse.ID = h.ToolCallID
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		default:
			contents = append(contents, genai.NewContentFromText(h.Content, genai.RoleUser))
		}
	}
	return contents
}
