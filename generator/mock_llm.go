package generator

import (
	"context"
	"encoding/json"
	"strings"
)

// MockLLM is an offline stand-in for local runs. It always routes an instruction
// through the first tool and echoes the tool output as its final answer.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	platform := "your audience"
	first, _, _ := strings.Cut(prompt.User, "\n")
	if p, ok := strings.CutPrefix(first, "Create a READY-TO-POST ad copy for "); ok {
		platform = strings.TrimSuffix(p, ".")
	}
	product := "our product"
	for _, line := range strings.Split(prompt.User, "\n") {
		if v, ok := strings.CutPrefix(line, "Product: "); ok && v != "" {
			product = v
		}
	}

	var sb strings.Builder
	sb.WriteString("**" + product + "** is built for people like you.\n\n")
	sb.WriteString("Seen on " + platform + ": stop wasting time and start getting results.\n\n")
	sb.WriteString("👉 Try it today!\n")
	return sb.String(), nil
}

func (m MockLLM) Converse(_ context.Context, conv Conversation, tools []ToolSpec) (Reply, error) {
	if len(conv.Messages) == 0 {
		return Reply{}, nil
	}
	last := conv.Messages[len(conv.Messages)-1]
	if last.Role == RoleTool {
		return Reply{Content: last.Content}, nil
	}
	if len(tools) == 0 {
		return Reply{Content: last.Content}, nil
	}
	platform := strings.TrimSpace(strings.TrimPrefix(last.Content, Instruction("")))
	args, _ := json.Marshal(map[string]string{"platform": platform})
	return Reply{ToolCalls: []ToolCall{{ID: "mock_call", Name: tools[0].Name, Arguments: args}}}, nil
}
