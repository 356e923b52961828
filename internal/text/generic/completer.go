package generic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Complete the chat with a single, non streamed, request.
func (c *Completer) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	if c.client == nil || c.apiKey == "" {
		return models.Reply{}, errors.New("completer is not set up")
	}
	if c.limiter != nil {
		c.limiter.WaitIfNeeded(ctx)
	}
	req, err := c.createRequest(ctx, chat, specs, choice)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer res.Body.Close()
	if c.limiter != nil {
		if err := c.limiter.UpdateFromHeaders(res.Header); err != nil && c.debug {
			ancli.PrintWarn(fmt.Sprintf("failed to update rate limits: %v\n", err))
		}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to read body: %w", err)
	}
	if res.StatusCode == http.StatusTooManyRequests {
		var resetAt time.Time
		if c.limiter != nil {
			resetAt = c.limiter.ResetAt()
		}
		return models.Reply{}, models.NewRateLimitError(resetAt, errorMessage(body))
	}
	if res.StatusCode != http.StatusOK {
		return models.Reply{}, fmt.Errorf("unexpected status code: %v, body: %v", res.Status, errorMessage(body))
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("%v response: %v\n", c.Vendor, string(body)))
	}
	var completion chatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return models.Reply{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.Reply{}, errors.New("response contained no choices")
	}
	return toReply(completion.Choices[0].Message)
}

func errorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return string(body)
}

func (c *Completer) createRequest(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (*http.Request, error) {
	msgs := toMessages(chat.Messages)
	if c.Clean != nil {
		msgs = c.Clean(msgs)
	}
	reqData := req{
		Model:       c.Model,
		Messages:    msgs,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopP:        c.TopP,
	}
	if len(specs) > 0 {
		reqData.Tools = toTools(specs)
		reqData.ToolChoice = c.ToolChoice
		if choice == models.ToolChoiceNone {
			none := "none"
			reqData.ToolChoice = &none
		}
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("%v request: %v\n", c.Vendor, debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", c.apiKey))
	return req, nil
}

func toTools(specs []pub_models.Specification) []ToolSuper {
	ret := make([]ToolSuper, 0, len(specs))
	for _, s := range specs {
		inputs := pub_models.InputSchema{}
		if s.Inputs != nil {
			inputs = *s.Inputs
		}
		inputs.Patch()
		ret = append(ret, ToolSuper{
			Type: "function",
			Function: Tool{
				Name:        s.Name,
				Description: s.Description,
				Inputs:      inputs,
			},
		})
	}
	return ret
}

func toMessages(msgs []pub_models.Message) []Message {
	ret := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		content := m.Content
		wire := Message{
			Role:       m.Role,
			Content:    &content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			if content == "" {
				wire.Content = nil
			}
			for _, call := range m.ToolCalls {
				wire.ToolCalls = append(wire.ToolCalls, ToolsCall{
					ID:   call.ID,
					Type: "function",
					Function: Func{
						Name:      call.Name,
						Arguments: call.Arguments(),
					},
				})
			}
		}
		ret = append(ret, wire)
	}
	return ret
}

func toReply(msg Message) (models.Reply, error) {
	reply := models.Reply{}
	if msg.Content != nil {
		reply.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		input := pub_models.Input{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return models.Reply{}, fmt.Errorf("failed to decode arguments of tool call '%v': %w", tc.Function.Name, err)
			}
		}
		reply.Calls = append(reply.Calls, pub_models.Call{
			ID:     tc.ID,
			Name:   tc.Function.Name,
			Inputs: input,
		})
	}
	return reply, nil
}
