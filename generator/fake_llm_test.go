package generator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// scriptedLLM drives the agent deterministically. By default it calls the first
// tool once per instruction and answers with the tool output.
type scriptedLLM struct {
	mu           sync.Mutex
	instructions []string
	prompts      []Prompt

	// skip lists platforms for which the model answers directly.
	skip map[string]bool
	// failConverse / failComplete make the call for that platform fail.
	failConverse map[string]error
	failComplete map[string]error
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()

	first, _, _ := strings.Cut(p.User, "\n")
	platform := strings.TrimSuffix(strings.TrimPrefix(first, "Create a READY-TO-POST ad copy for "), ".")
	if err := s.failComplete[platform]; err != nil {
		return "", err
	}
	return "  ad for " + platform + "  \n", nil
}

func (s *scriptedLLM) Converse(_ context.Context, conv Conversation, tools []ToolSpec) (Reply, error) {
	last := conv.Messages[len(conv.Messages)-1]
	if last.Role == RoleTool {
		return Reply{Content: last.Content}, nil
	}

	s.mu.Lock()
	s.instructions = append(s.instructions, last.Content)
	s.mu.Unlock()

	platform := strings.TrimPrefix(last.Content, "Generate an ad for ")
	if err := s.failConverse[platform]; err != nil {
		return Reply{}, err
	}
	if s.skip[platform] || len(tools) == 0 {
		return Reply{Content: "  direct answer for " + platform + " "}, nil
	}
	args, _ := json.Marshal(map[string]string{"platform": platform})
	return Reply{ToolCalls: []ToolCall{{ID: "call_" + platform, Name: tools[0].Name, Arguments: args}}}, nil
}
