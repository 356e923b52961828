package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"golang.org/x/sync/errgroup"
)

type state int

const (
	awaitingModel state = iota
	executingTools
	done
)

// Invoke runs the loop on top of history, which should end with the new
// user message. The returned chat starts with the system prompt and ends with
// the assistant answer. On error, nothing of the invocation is returned.
func (a *Agent) Invoke(ctx context.Context, history []pub_models.Message, obs Observer) (pub_models.Chat, error) {
	if a.completer == nil {
		return pub_models.Chat{}, ErrNoCompleter
	}
	if obs == nil {
		obs = Nop
	}
	now := time.Now()
	chat := pub_models.Chat{
		Created:  now,
		ID:       fmt.Sprintf("%v_webagent", now.UnixNano()),
		Messages: make([]pub_models.Message, 0, len(history)+1),
	}
	chat.Messages = append(chat.Messages, pub_models.Message{Role: pub_models.RoleSystem, Content: a.prompt})
	chat.Messages = append(chat.Messages, history...)

	st := awaitingModel
	iteration := 1
	var pending []pub_models.Call
	for st != done {
		switch st {
		case awaitingModel:
			if err := ctx.Err(); err != nil {
				return pub_models.Chat{}, err
			}
			// On the last iteration the model has to make do with what it has
			final := iteration >= a.maxIterations
			choice := models.ToolChoiceAuto
			if final {
				choice = models.ToolChoiceNone
			}
			obs.OnStep(Step{Kind: StepModel, Iteration: iteration})
			reply, err := a.completer.Complete(ctx, chat, a.registry.Specifications(), choice)
			if err != nil {
				return pub_models.Chat{}, asModelError(err)
			}
			if a.debug {
				ancli.Noticef("iteration: %v, reply: %v", iteration, debug.IndentedJsonFmt(reply))
			}
			switch {
			case len(reply.Calls) == 0:
				st = a.answer(&chat, reply.Content, iteration, obs)
			case final:
				st = a.answer(&chat, GiveUpAnswer, iteration, obs)
			default:
				chat.Messages = append(chat.Messages, pub_models.Message{
					Role:      pub_models.RoleAssistant,
					Content:   reply.Content,
					ToolCalls: reply.Calls,
				})
				pending = reply.Calls
				st = executingTools
			}
		case executingTools:
			chat.Messages = append(chat.Messages, a.runTools(ctx, pending, iteration, obs)...)
			pending = nil
			iteration++
			st = awaitingModel
		}
	}
	return chat, nil
}

func (a *Agent) answer(chat *pub_models.Chat, content string, iteration int, obs Observer) state {
	if strings.TrimSpace(content) == "" {
		content = NoAnswer
	}
	chat.Messages = append(chat.Messages, pub_models.Message{
		Role:    pub_models.RoleAssistant,
		Content: content,
	})
	obs.OnStep(Step{Kind: StepAnswer, Iteration: iteration, Output: content})
	return done
}

// runTools executes calls and returns one tool message per call, in the
// order of calls. Steps are reported from the calling goroutine.
func (a *Agent) runTools(ctx context.Context, calls []pub_models.Call, iteration int, obs Observer) []pub_models.Message {
	for _, c := range calls {
		obs.OnStep(Step{Kind: StepToolCall, Iteration: iteration, Call: &c})
	}

	outs := make([]string, len(calls))
	if a.parallelTools && len(calls) > 1 {
		var g errgroup.Group
		for i, c := range calls {
			g.Go(func() error {
				outs[i] = a.registry.Invoke(ctx, c)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, c := range calls {
			outs[i] = a.registry.Invoke(ctx, c)
		}
	}

	ret := make([]pub_models.Message, 0, len(calls))
	for i, c := range calls {
		out := outs[i]
		failed := strings.HasPrefix(out, "ERROR:")
		out = fmt.Sprintf("[ Tool rounds remaining: %v ] %v", max(a.maxIterations-iteration-1, 0), out)
		out = limitToolOutput(out, a.toolOutputRuneLimit)
		obs.OnStep(Step{Kind: StepToolResult, Iteration: iteration, Call: &c, Output: out, Failed: failed})
		ret = append(ret, pub_models.Message{
			Role:       pub_models.RoleTool,
			Content:    out,
			ToolCallID: c.ID,
			ToolName:   c.Name,
		})
	}
	return ret
}

func limitToolOutput(out string, limit int) string {
	if limit <= 0 {
		return out
	}
	amRunes := utf8.RuneCountInString(out)
	if amRunes <= limit {
		return out
	}
	return fmt.Sprintf(
		"%v... and %v more characters. The tool's output has been restricted as it's too long. Please concentrate your tool calls to reduce the amount of tokens used!",
		string([]rune(out)[:limit]), amRunes-limit)
}

func asModelError(err error) error {
	var me *models.ModelError
	if errors.As(err, &me) {
		return err
	}
	return &models.ModelError{Vendor: "unknown", Model: "unknown", Err: err}
}
