package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// MaxToolRounds bounds the tool-call loop of one agent turn.
const MaxToolRounds = 5

// Agent answers one instruction at a time, letting the model decide whether to
// call any of its tools. Whether a tool is actually used is up to the model.
type Agent struct {
	llm          LLMClient
	systemPrompt string
	tools        map[string]Tool
	specs        []ToolSpec
}

func NewAgent(llm LLMClient, systemPrompt string, tools ...Tool) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:          llm,
		systemPrompt: systemPrompt,
		tools:        make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		spec := t.Spec()
		if _, dup := a.tools[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", spec.Name)
		}
		a.tools[spec.Name] = t
		a.specs = append(a.specs, spec)
	}
	return a, nil
}

// Run sends instruction to the model and executes requested tool calls until the
// model answers without calling a tool. Provider and tool errors abort the turn.
func (a *Agent) Run(ctx context.Context, instruction string) (string, error) {
	conv := Conversation{
		System:   a.systemPrompt,
		Messages: []Message{{Role: RoleUser, Content: instruction}},
	}

	var lastText string
	for round := 1; round <= MaxToolRounds; round++ {
		reply, err := a.llm.Converse(ctx, conv, a.specs)
		if err != nil {
			slog.Error("Agent.Run: model call failed", "round", round, "error", err)
			return "", fmt.Errorf("agent round %d: %w", round, err)
		}
		slog.Debug("Agent.Run: received reply", "round", round, "contentLength", len(reply.Content), "toolCallCount", len(reply.ToolCalls))

		if reply.Content != "" {
			lastText = reply.Content
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		conv.Messages = append(conv.Messages, Message{
			Role:      RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			result, err := a.execute(ctx, call)
			if err != nil {
				return "", err
			}
			lastText = result
			conv.Messages = append(conv.Messages, Message{
				Role:       RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	slog.Warn("Agent.Run: hit maximum tool rounds", "maxRounds", MaxToolRounds)
	return lastText, nil
}

func (a *Agent) execute(ctx context.Context, call ToolCall) (string, error) {
	tool, ok := a.tools[call.Name]
	if !ok {
		slog.Warn("Agent.execute: unknown tool call", "toolName", call.Name)
		return fmt.Sprintf("unknown tool: %s", call.Name), nil
	}
	slog.Info("Agent.execute: executing tool call", "toolName", call.Name, "toolCallID", call.ID, "args", formatToolArgumentsForLog(call.Arguments))
	return tool.Call(ctx, call.Arguments)
}
