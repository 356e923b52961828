package anthropic

import (
	"encoding/json"

	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

type ClaudeResponse struct {
	Content      []ContentBlock `json:"content"`
	ID           string         `json:"id"`
	Model        string         `json:"model"`
	Role         string         `json:"role"`
	StopReason   string         `json:"stop_reason"`
	StopSequence any            `json:"stop_sequence"`
	Type         string         `json:"type"`
	Usage        TokenInfo      `json:"usage"`
}

// ContentBlock is either a text, tool_use or tool_result block. Only the
// fields of the respective type are set.
type ContentBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text,omitempty"`
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Input     pub_models.Input `json:"input,omitempty"`
	ToolUseID string           `json:"tool_use_id,omitempty"`
	Content   string           `json:"content,omitempty"`
}

// MarshalJSON always writes the input of tool_use blocks, the api rejects
// tool_use blocks without one even when the tool takes no arguments.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	type plain ContentBlock
	if b.Type != "tool_use" {
		return json.Marshal(plain(b))
	}
	input := b.Input
	if input == nil {
		input = pub_models.Input{}
	}
	return json.Marshal(struct {
		plain
		Input pub_models.Input `json:"input"`
	}{plain: plain(b), Input: input})
}

type TokenInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeReqMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

type claudeTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema pub_models.InputSchema `json:"input_schema"`
}

type claudeReq struct {
	Model       string             `json:"model"`
	Messages    []claudeReqMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Tools       []claudeTool       `json:"tools,omitempty"`
	ToolChoice  *claudeToolChoice  `json:"tool_choice,omitempty"`
}

type claudeToolChoice struct {
	Type string `json:"type"`
}

type claudeError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
