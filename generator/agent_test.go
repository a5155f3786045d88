package generator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdTool_CallRecordsAndTrims(t *testing.T) {
	llm := &scriptedLLM{}
	log := NewCallLog()
	log.now = func() time.Time { return time.Date(2024, 5, 1, 9, 7, 3, 0, time.UTC) }
	tool := NewAdTool(NewAdGenerator(llm, "ctx-block", log))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"platform":"LinkedIn"}`))
	require.NoError(t, err)
	assert.Equal(t, "ad for LinkedIn", out)

	require.Equal(t, []CallRecord{{Function: "generate_ad", Platform: "LinkedIn", Time: "09:07:03"}}, log.Records())
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0].User, "ctx-block")
}

func TestAdTool_BadArgumentsDoNotRecord(t *testing.T) {
	log := NewCallLog()
	tool := NewAdTool(NewAdGenerator(&scriptedLLM{}, "ctx", log))

	out, err := tool.Call(context.Background(), json.RawMessage(`not json`))
	require.NoError(t, err)
	assert.Contains(t, out, "invalid arguments")

	out, err = tool.Call(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "platform is required", out)

	assert.Zero(t, log.Len())
}

func TestAdTool_BlankPlatformIsAccepted(t *testing.T) {
	llm := &scriptedLLM{}
	log := NewCallLog()
	tool := NewAdTool(NewAdGenerator(llm, "ctx", log))

	_, err := tool.Call(context.Background(), json.RawMessage(`{"platform":""}`))
	require.NoError(t, err)

	records := log.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "generate_ad", records[0].Function)
	assert.Equal(t, "", records[0].Platform)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0].User, "ad copy for .")
}

func TestAdTool_CompletionErrorPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	log := NewCallLog()
	tool := NewAdTool(NewAdGenerator(&scriptedLLM{failComplete: map[string]error{"Facebook": boom}}, "ctx", log))

	_, err := tool.Call(context.Background(), json.RawMessage(`{"platform":"Facebook"}`))
	require.ErrorIs(t, err, boom)
	// The call is logged before the provider is reached.
	assert.Equal(t, 1, log.Len())
}

func TestAdTool_Spec(t *testing.T) {
	spec := NewAdTool(nil).Spec()
	assert.Equal(t, "generate_ad", spec.Name)
	assert.Equal(t, "Generate an ad copy given the platform (Facebook, Instagram, LinkedIn, or Google Ads)", spec.Description)
	assert.Equal(t, []string{"platform"}, spec.Parameters["required"])
}

func TestAgent_UsesTool(t *testing.T) {
	llm := &scriptedLLM{}
	log := NewCallLog()
	agent, err := NewAgent(llm, AgentSystemPrompt, NewAdTool(NewAdGenerator(llm, "ctx", log)))
	require.NoError(t, err)

	out, err := agent.Run(context.Background(), Instruction("Facebook"))
	require.NoError(t, err)
	assert.Equal(t, "ad for Facebook", out)
	assert.Equal(t, 1, log.Len())
}

func TestAgent_SkipsTool(t *testing.T) {
	llm := &scriptedLLM{skip: map[string]bool{"Facebook": true}}
	log := NewCallLog()
	agent, err := NewAgent(llm, AgentSystemPrompt, NewAdTool(NewAdGenerator(llm, "ctx", log)))
	require.NoError(t, err)

	out, err := agent.Run(context.Background(), Instruction("Facebook"))
	require.NoError(t, err)
	assert.Equal(t, "  direct answer for Facebook ", out)
	assert.Zero(t, log.Len())
}

func TestAgent_ModelErrorPropagates(t *testing.T) {
	boom := errors.New("network down")
	llm := &scriptedLLM{failConverse: map[string]error{"Facebook": boom}}
	agent, err := NewAgent(llm, AgentSystemPrompt)
	require.NoError(t, err)

	_, err = agent.Run(context.Background(), Instruction("Facebook"))
	assert.ErrorIs(t, err, boom)
}

type loopingLLM struct{ calls int }

func (l *loopingLLM) Complete(context.Context, Prompt) (string, error) { return "", nil }

func (l *loopingLLM) Converse(_ context.Context, _ Conversation, _ []ToolSpec) (Reply, error) {
	l.calls++
	return Reply{ToolCalls: []ToolCall{{ID: "x", Name: "no_such_tool", Arguments: json.RawMessage(`{}`)}}}, nil
}

func TestAgent_UnknownToolAndRoundLimit(t *testing.T) {
	llm := &loopingLLM{}
	agent, err := NewAgent(llm, AgentSystemPrompt)
	require.NoError(t, err)

	out, err := agent.Run(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "unknown tool: no_such_tool", out)
	assert.Equal(t, MaxToolRounds, llm.calls)
}

func TestNewAgent_Validation(t *testing.T) {
	_, err := NewAgent(nil, "sys")
	assert.Error(t, err)

	tool := NewAdTool(nil)
	_, err = NewAgent(&scriptedLLM{}, "sys", tool, tool)
	assert.ErrorContains(t, err, "duplicate tool")
}
