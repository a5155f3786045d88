package generator

import (
	"encoding/json"
	"fmt"
)

// AgentSystemPrompt configures the agent to always route ad requests through the tool.
const AgentSystemPrompt = "You are an ad generation agent. " +
	"Use the generate_ad function to produce ad copy for different platforms. " +
	"When asked to generate an ad for a platform, call the generate_ad function with that platform name."

// Prompt is one message set sent to the LLM.
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message is one conversation turn. Assistant turns may carry tool calls,
// tool turns carry the result of one call.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a function call requested by the model. ID is empty when the
// provider did not assign one. Signature is opaque provider state that must be
// sent back with the call (Gemini thought signatures).
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
	Signature []byte
}

// BuildContext renders the campaign block shared by every platform prompt of a run.
func BuildContext(in CampaignInput) string {
	return fmt.Sprintf(`
Product: %s
Description: %s
Problem: %s
USP: %s
Audience: %s, %s
Goal: %s
Tone: %s
`, in.ProductName, in.ProductDescription, in.Problem, in.USP, in.AgeGroup, in.Gender, in.Goal, in.Tone)
}

// BuildAdPrompt builds the completion prompt for one platform. The platform is not
// checked against Platforms.
func BuildAdPrompt(platform, contextBlock string) Prompt {
	user := fmt.Sprintf("Create a READY-TO-POST ad copy for %s.\n", platform) +
		contextBlock +
		"\nConstraints:\n" +
		"- Only return the ad text (no explanation)\n" +
		"- Strong call-to-action\n"
	return Prompt{User: user}
}

// Instruction is the user message handed to the agent for one platform.
func Instruction(platform string) string {
	return "Generate an ad for " + platform
}
