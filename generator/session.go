package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session holds everything one submission needs: the shared context block, its own
// call log and a single agent bound to a tool over that log.
type Session struct {
	ID      string
	Input   CampaignInput
	Context string
	Log     *CallLog
	agent   *Agent
}

// NewSession wires the generator, tool and agent for one run.
func NewSession(llm LLMClient, in CampaignInput) (*Session, error) {
	contextBlock := BuildContext(in)
	callLog := NewCallLog()
	tool := NewAdTool(NewAdGenerator(llm, contextBlock, callLog))
	agent, err := NewAgent(llm, AgentSystemPrompt, tool)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:      uuid.NewString(),
		Input:   in,
		Context: contextBlock,
		Log:     callLog,
		agent:   agent,
	}, nil
}

// Run asks the agent for each platform in order, one request at a time. It returns
// nil on the first failure; partial results are dropped.
func (s *Session) Run(ctx context.Context) (*Run, error) {
	started := time.Now()
	results := &Results{}
	for _, p := range Platforms() {
		slog.Debug("Session.Run: requesting ad", "session", s.ID, "platform", p)
		text, err := s.agent.Run(ctx, Instruction(p))
		if err != nil {
			slog.Error("Session.Run: aborting run", "session", s.ID, "platform", p, "error", err)
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		results.set(p, strings.TrimSpace(text))
	}

	calls := s.Log.Records()
	if len(calls) == 0 {
		slog.Warn("Session.Run: agent never called the tool", "session", s.ID, "tool", AdToolName)
	}
	slog.Info("Session.Run: ads generated", "session", s.ID, "platforms", results.Len(), "toolCalls", len(calls), "elapsed", time.Since(started))
	return &Run{
		ID:         s.ID,
		Input:      s.Input,
		Context:    s.Context,
		Calls:      calls,
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

// Generate runs one full submission.
func Generate(ctx context.Context, llm LLMClient, in CampaignInput) (*Run, error) {
	s, err := NewSession(llm, in)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
