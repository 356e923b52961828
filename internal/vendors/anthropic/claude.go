package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/webagent/internal/models"
	"github.com/baalimago/webagent/internal/text/generic"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const ClaudeURL = "https://api.anthropic.com/v1/messages"

type Claude struct {
	Model            string  `json:"model"`
	MaxTokens        int     `json:"max_tokens"`
	Url              string  `json:"url"`
	AnthropicVersion string  `json:"anthropic-version"`
	Temperature      float64 `json:"temperature"`
	client           *http.Client
	apiKey           string
	limiter          *generic.RateLimiter
	debug            bool
}

var ClaudeDefault = Claude{
	Model:            "claude-sonnet-4-5-20250929",
	Url:              ClaudeURL,
	AnthropicVersion: "2023-06-01",
	Temperature:      0,
	MaxTokens:        4096,
}

func (c *Claude) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	if c.client == nil || c.apiKey == "" {
		return models.Reply{}, errors.New("claude is not set up")
	}
	c.limiter.WaitIfNeeded(ctx)
	req, err := c.createRequest(ctx, chat, specs, choice)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer res.Body.Close()
	if err := c.limiter.UpdateFromHeaders(res.Header); err != nil && c.debug {
		ancli.PrintWarn(fmt.Sprintf("failed to update rate limits: %v\n", err))
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to read body: %w", err)
	}
	if res.StatusCode == http.StatusTooManyRequests {
		return models.Reply{}, models.NewRateLimitError(c.limiter.ResetAt(), errorMessage(body))
	}
	if res.StatusCode != http.StatusOK {
		return models.Reply{}, fmt.Errorf("unexpected status code: %v, body: %v", res.Status, errorMessage(body))
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("claude response: %v\n", string(body)))
	}
	var resp ClaudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Reply{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return toReply(resp), nil
}

func errorMessage(body []byte) string {
	var ce claudeError
	if err := json.Unmarshal(body, &ce); err == nil && ce.Error.Message != "" {
		return ce.Error.Message
	}
	return string(body)
}

func toReply(resp ClaudeResponse) models.Reply {
	var reply models.Reply
	var text bytes.Buffer
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			input := block.Input
			if input == nil {
				input = pub_models.Input{}
			}
			reply.Calls = append(reply.Calls, pub_models.Call{
				ID:     block.ID,
				Name:   block.Name,
				Inputs: input,
			})
		}
	}
	reply.Content = text.String()
	return reply
}

func (c *Claude) createRequest(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (*http.Request, error) {
	system := ""
	if sys, err := chat.FirstSystemMessage(); err == nil {
		system = sys.Content
	}
	reqData := claudeReq{
		Model:       c.Model,
		Messages:    claudifyMessages(chat.WithoutSystem()),
		MaxTokens:   c.MaxTokens,
		System:      system,
		Temperature: c.Temperature,
	}
	for _, s := range specs {
		schema := pub_models.InputSchema{}
		if s.Inputs != nil {
			schema = *s.Inputs
		}
		schema.Patch()
		reqData.Tools = append(reqData.Tools, claudeTool{
			Name:        s.Name,
			Description: s.Description,
			InputSchema: schema,
		})
	}
	if len(reqData.Tools) > 0 && choice == models.ToolChoiceNone {
		reqData.ToolChoice = &claudeToolChoice{Type: "none"}
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("claude request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.AnthropicVersion)
	return req, nil
}

// claudifyMessages converts from the openai-like chat format into the
// block based format of the messages api. Tool results are sent as user
// messages, and consecutive messages of the same role are merged since
// the api requires alternating roles.
func claudifyMessages(msgs []pub_models.Message) []claudeReqMessage {
	claudeMsgs := make([]claudeReqMessage, 0, len(msgs))
	for _, msg := range msgs {
		var cm claudeReqMessage
		switch msg.Role {
		case pub_models.RoleTool:
			cm = claudeReqMessage{
				Role: "user",
				Content: []ContentBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolCallID,
					Content:   msg.Content,
				}},
			}
		case pub_models.RoleAssistant:
			cm = claudeReqMessage{Role: "assistant"}
			if msg.Content != "" {
				cm.Content = append(cm.Content, ContentBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				input := call.Inputs
				if input == nil {
					input = pub_models.Input{}
				}
				cm.Content = append(cm.Content, ContentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: input,
				})
			}
		default:
			cm = claudeReqMessage{
				Role:    "user",
				Content: []ContentBlock{{Type: "text", Text: msg.Content}},
			}
		}
		if len(cm.Content) == 0 {
			continue
		}
		if n := len(claudeMsgs); n > 0 && claudeMsgs[n-1].Role == cm.Role {
			claudeMsgs[n-1].Content = append(claudeMsgs[n-1].Content, cm.Content...)
			continue
		}
		claudeMsgs = append(claudeMsgs, cm)
	}
	return claudeMsgs
}
