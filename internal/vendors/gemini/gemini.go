package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

var Default = Gemini{
	Model:       "gemini-2.5-flash",
	Temperature: 0,
}

// Gemini talks to the Gemini API through the genai sdk.
type Gemini struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
	// BaseURL overrides the api endpoint, empty uses the sdk default.
	BaseURL string `json:"url"`
	client  *genai.Client
	debug   bool
}

func (g *Gemini) Setup() error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return errors.New("environment variable 'GEMINI_API_KEY' (or 'GOOGLE_API_KEY') not set")
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
	if g.BaseURL != "" {
		cc.HTTPOptions.BaseURL = g.BaseURL
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("GEMINI_DEBUG")) {
		g.debug = true
	}
	return nil
}

func (g *Gemini) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	if g.client == nil {
		return models.Reply{}, errors.New("gemini is not set up")
	}
	contents := toContents(chat.WithoutSystem())
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.Temperature),
	}
	if g.MaxTokens > 0 {
		config.MaxOutputTokens = g.MaxTokens
	}
	if sys, err := chat.FirstSystemMessage(); err == nil && sys.Content != "" {
		config.SystemInstruction = genai.NewContentFromText(sys.Content, genai.RoleUser)
	}
	if len(specs) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(specs)}}
		if choice == models.ToolChoiceNone {
			config.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone},
			}
		}
	}
	if g.debug {
		ancli.PrintOK(fmt.Sprintf("gemini request: %v\n", debug.IndentedJsonFmt(contents)))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return models.Reply{}, models.NewRateLimitError(time.Time{}, apiErr.Message)
		}
		return models.Reply{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if g.debug {
		ancli.PrintOK(fmt.Sprintf("gemini response: %v\n", debug.IndentedJsonFmt(resp)))
	}
	return toReply(resp)
}

func toReply(resp *genai.GenerateContentResponse) (models.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		reason := ""
		if resp != nil && resp.PromptFeedback != nil {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return models.Reply{}, fmt.Errorf("response contained no candidates %v", reason)
	}
	var reply models.Reply
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			call := pub_models.Call{
				ID:     fc.ID,
				Name:   fc.Name,
				Inputs: pub_models.Input(fc.Args),
			}
			if call.ID == "" {
				call.ID = uuid.NewString()
			}
			if call.Inputs == nil {
				call.Inputs = pub_models.Input{}
			}
			if len(part.ThoughtSignature) > 0 {
				call.ExtraContent = map[string]any{
					"google": map[string]any{"thought_signature": part.ThoughtSignature},
				}
			}
			reply.Calls = append(reply.Calls, call)
		}
	}
	reply.Content = text.String()
	return reply, nil
}

func thoughtSignature(call pub_models.Call) []byte {
	google, ok := call.ExtraContent["google"].(map[string]any)
	if !ok {
		return nil
	}
	sig, _ := google["thought_signature"].([]byte)
	return sig
}

// toContents converts the chat into genai contents. Function responses are
// user content, and consecutive contents of the same role are merged.
func toContents(msgs []pub_models.Message) []*genai.Content {
	ret := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		var c *genai.Content
		switch msg.Role {
		case pub_models.RoleTool:
			part := genai.NewPartFromFunctionResponse(msg.ToolName, map[string]any{"output": msg.Content})
			part.FunctionResponse.ID = msg.ToolCallID
			c = genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser)
		case pub_models.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: map[string]any(call.Inputs),
					},
					ThoughtSignature: thoughtSignature(call),
				})
			}
			c = genai.NewContentFromParts(parts, genai.RoleModel)
		default:
			c = genai.NewContentFromText(msg.Content, genai.RoleUser)
		}
		if len(c.Parts) == 0 {
			continue
		}
		if n := len(ret); n > 0 && ret[n-1].Role == c.Role {
			ret[n-1].Parts = append(ret[n-1].Parts, c.Parts...)
			continue
		}
		ret = append(ret, c)
	}
	return ret
}

func toDeclarations(specs []pub_models.Specification) []*genai.FunctionDeclaration {
	ret := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		fd := &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
		}
		if s.Inputs != nil && len(s.Inputs.Properties) > 0 {
			fd.Parameters = toSchema(*s.Inputs)
		}
		ret = append(ret, fd)
	}
	return ret
}

func toSchema(is pub_models.InputSchema) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Required:   is.Required,
		Properties: make(map[string]*genai.Schema, len(is.Properties)),
	}
	for name, p := range is.Properties {
		schema.Properties[name] = toParameterSchema(p)
	}
	return schema
}

func toParameterSchema(p pub_models.ParameterObject) *genai.Schema {
	s := &genai.Schema{
		Type:        schemaType(p.Type),
		Description: p.Description,
	}
	if p.Enum != nil {
		s.Enum = *p.Enum
	}
	if p.Items != nil {
		s.Items = toParameterSchema(*p.Items)
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}
