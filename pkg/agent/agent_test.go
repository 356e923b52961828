package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

type funcTool struct {
	name string
	call func(context.Context, pub_models.Input) (string, error)
}

func (f *funcTool) Call(ctx context.Context, in pub_models.Input) (string, error) {
	return f.call(ctx, in)
}

func (f *funcTool) Specification() pub_models.Specification {
	return pub_models.Specification{Name: f.name}
}

// scripted replays replies, then keeps answering with the last one.
type scripted struct {
	mu      sync.Mutex
	replies []models.Reply
	err     error
	chats   []pub_models.Chat
	specs   [][]pub_models.Specification
	choices []models.ToolChoice
}

func (s *scripted) Setup() error { return nil }

func (s *scripted) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := chat
	cpy.Messages = append([]pub_models.Message(nil), chat.Messages...)
	s.chats = append(s.chats, cpy)
	s.specs = append(s.specs, specs)
	s.choices = append(s.choices, choice)
	if s.err != nil {
		return models.Reply{}, s.err
	}
	idx := min(len(s.chats)-1, len(s.replies)-1)
	return s.replies[idx], nil
}

type blocking struct{}

func (blocking) Setup() error { return nil }

func (blocking) Complete(ctx context.Context, _ pub_models.Chat, _ []pub_models.Specification, _ models.ToolChoice) (models.Reply, error) {
	<-ctx.Done()
	return models.Reply{}, ctx.Err()
}

func userMsg(s string) []pub_models.Message {
	return []pub_models.Message{{Role: pub_models.RoleUser, Content: s}}
}

func collect(steps *[]Step) Observer {
	return ObserverFunc(func(s Step) {
		*steps = append(*steps, s)
	})
}

func kinds(steps []Step) string {
	ret := make([]string, 0, len(steps))
	for _, s := range steps {
		ret = append(ret, string(s.Kind))
	}
	return strings.Join(ret, ",")
}

func TestNew(t *testing.T) {
	t.Run("it should create an agent with default values", func(t *testing.T) {
		a := New()
		testboil.FailTestIfDiff(t, a.maxIterations, DefaultMaxIterations)
		testboil.FailTestIfDiff(t, a.toolOutputRuneLimit, DefaultToolOutputRuneLimit)
		testboil.FailTestIfDiff(t, a.prompt, SystemPrompt)
		testboil.FailTestIfDiff(t, a.parallelTools, true)
	})

	t.Run("it should apply options", func(t *testing.T) {
		a := New(
			WithPrompt("test-prompt"),
			WithMaxIterations(3),
			WithToolOutputRuneLimit(5),
			WithParallelTools(false),
			WithTools(&funcTool{name: "b"}, &funcTool{name: "a"}),
		)
		testboil.FailTestIfDiff(t, a.prompt, "test-prompt")
		testboil.FailTestIfDiff(t, a.maxIterations, 3)
		testboil.FailTestIfDiff(t, a.toolOutputRuneLimit, 5)
		testboil.FailTestIfDiff(t, a.parallelTools, false)
		testboil.FailTestIfDiff(t, len(a.Tools()), 2)
		testboil.FailTestIfDiff(t, a.Tools()[0].Specification().Name, "a")
	})

	t.Run("it should ignore non-positive iteration bounds", func(t *testing.T) {
		a := New(WithMaxIterations(0))
		testboil.FailTestIfDiff(t, a.maxIterations, DefaultMaxIterations)
	})

	t.Run("it should NOT persist options across calls", func(t *testing.T) {
		_ = New(WithPrompt("changed"), WithTools(&funcTool{name: "x"}))
		a := New()
		testboil.FailTestIfDiff(t, a.prompt, SystemPrompt)
		testboil.FailTestIfDiff(t, len(a.Tools()), 0)
	})
}

func TestInvoke_DirectAnswer(t *testing.T) {
	c := &scripted{replies: []models.Reply{{Content: "Spain"}}}
	a := New(WithCompleter(c), WithPrompt("sys"))
	var steps []Step
	chat, err := a.Invoke(context.Background(), userMsg("who won?"), collect(&steps))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, len(chat.Messages), 3)
	testboil.FailTestIfDiff(t, chat.Messages[0].Role, pub_models.RoleSystem)
	testboil.FailTestIfDiff(t, chat.Messages[0].Content, "sys")
	testboil.FailTestIfDiff(t, chat.Messages[2].Content, "Spain")
	testboil.FailTestIfDiff(t, kinds(steps), "model,answer")
}

func TestInvoke_ToolLoop(t *testing.T) {
	bStarted := make(chan struct{})
	slow := &funcTool{name: "slow", call: func(ctx context.Context, in pub_models.Input) (string, error) {
		select {
		case <-bStarted:
			return "slow done", nil
		case <-time.After(time.Second):
			return "", errors.New("ran sequentially")
		}
	}}
	fast := &funcTool{name: "fast", call: func(ctx context.Context, in pub_models.Input) (string, error) {
		close(bStarted)
		return "fast done", nil
	}}
	c := &scripted{replies: []models.Reply{
		{Calls: []pub_models.Call{
			{ID: "1", Name: "slow"},
			{ID: "2", Name: "fast"},
			{ID: "3", Name: "nope"},
		}},
		{Content: "final"},
	}}
	a := New(WithCompleter(c), WithTools(slow, fast))
	var steps []Step
	chat, err := a.Invoke(context.Background(), userMsg("q"), collect(&steps))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// system, user, assistant calls, 3 tool results, answer
	testboil.FailTestIfDiff(t, len(chat.Messages), 7)
	toolMsgs := chat.Messages[3:6]
	for i, want := range []struct{ id, name, out string }{
		{"1", "slow", "slow done"},
		{"2", "fast", "fast done"},
		{"3", "nope", "ERROR: unknown tool call: nope"},
	} {
		m := toolMsgs[i]
		testboil.FailTestIfDiff(t, m.Role, pub_models.RoleTool)
		testboil.FailTestIfDiff(t, m.ToolCallID, want.id)
		testboil.FailTestIfDiff(t, m.ToolName, want.name)
		testboil.AssertStringContains(t, m.Content, want.out)
	}
	testboil.FailTestIfDiff(t, chat.Messages[6].Content, "final")
	testboil.FailTestIfDiff(t, kinds(steps),
		"model,tool_call,tool_call,tool_call,tool_result,tool_result,tool_result,model,answer")
	if steps[4].Failed || !steps[6].Failed {
		t.Fatalf("expected only the unknown tool to be marked as failed, got: %+v", steps[4:7])
	}
	testboil.FailTestIfDiff(t, steps[7].Iteration, 2)

	// The second model call sees the tool results
	testboil.FailTestIfDiff(t, len(c.chats[1].Messages), 6)
}

func TestInvoke_Sequential(t *testing.T) {
	var mu sync.Mutex
	var order []string
	mk := func(name string) *funcTool {
		return &funcTool{name: name, call: func(context.Context, pub_models.Input) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return name, nil
		}}
	}
	c := &scripted{replies: []models.Reply{
		{Calls: []pub_models.Call{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}, {ID: "3", Name: "c"}}},
		{Content: "done"},
	}}
	a := New(WithCompleter(c), WithTools(mk("a"), mk("b"), mk("c")), WithParallelTools(false))
	if _, err := a.Invoke(context.Background(), userMsg("q"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, strings.Join(order, ""), "abc")
}

func TestInvoke_IterationBound(t *testing.T) {
	loop := pub_models.Call{ID: "x", Name: "loop"}
	tool := &funcTool{name: "loop", call: func(context.Context, pub_models.Input) (string, error) {
		return "again", nil
	}}

	t.Run("it should forbid tool calls on the last iteration", func(t *testing.T) {
		c := &scripted{replies: []models.Reply{
			{Calls: []pub_models.Call{loop}},
			{Calls: []pub_models.Call{loop}},
			{Content: "best effort"},
		}}
		a := New(WithCompleter(c), WithTools(tool), WithMaxIterations(3))
		chat, err := a.Invoke(context.Background(), userMsg("q"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, len(c.specs), 3)
		testboil.FailTestIfDiff(t, len(c.specs[0]), 1)
		// Still declared, the chat holds earlier calls of it
		testboil.FailTestIfDiff(t, len(c.specs[2]), 1)
		testboil.FailTestIfDiff(t, c.choices[0], models.ToolChoiceAuto)
		testboil.FailTestIfDiff(t, c.choices[1], models.ToolChoiceAuto)
		testboil.FailTestIfDiff(t, c.choices[2], models.ToolChoiceNone)
		testboil.FailTestIfDiff(t, chat.Messages[len(chat.Messages)-1].Content, "best effort")
	})

	t.Run("it should give up if the model insists on tools", func(t *testing.T) {
		c := &scripted{replies: []models.Reply{{Calls: []pub_models.Call{loop}}}}
		a := New(WithCompleter(c), WithTools(tool), WithMaxIterations(2))
		chat, err := a.Invoke(context.Background(), userMsg("q"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, len(c.chats), 2)
		last := chat.Messages[len(chat.Messages)-1]
		testboil.FailTestIfDiff(t, last.Content, GiveUpAnswer)
		testboil.FailTestIfDiff(t, len(last.ToolCalls), 0)
	})

	t.Run("it should tell the model how many rounds remain", func(t *testing.T) {
		c := &scripted{replies: []models.Reply{{Calls: []pub_models.Call{loop}}, {Content: "ok"}}}
		a := New(WithCompleter(c), WithTools(tool), WithMaxIterations(4))
		chat, _ := a.Invoke(context.Background(), userMsg("q"), nil)
		testboil.FailTestIfDiff(t, chat.Messages[3].Content, "[ Tool rounds remaining: 2 ] again")
	})
}

func TestInvoke_Errors(t *testing.T) {
	t.Run("model error", func(t *testing.T) {
		inner := errors.New("boom")
		a := New(WithCompleter(&scripted{err: inner}))
		chat, err := a.Invoke(context.Background(), userMsg("q"), nil)
		var me *models.ModelError
		if !errors.As(err, &me) {
			t.Fatalf("expected ModelError, got: %v", err)
		}
		if !errors.Is(err, inner) {
			t.Fatal("expected wrapped error")
		}
		testboil.FailTestIfDiff(t, len(chat.Messages), 0)
	})

	t.Run("model error passes through", func(t *testing.T) {
		want := &models.ModelError{Vendor: "openai", Model: "gpt-4o", Err: errors.New("429")}
		a := New(WithCompleter(&scripted{err: want}))
		_, err := a.Invoke(context.Background(), userMsg("q"), nil)
		var me *models.ModelError
		if !errors.As(err, &me) || me != want {
			t.Fatalf("expected the same ModelError, got: %v", err)
		}
	})

	t.Run("no completer", func(t *testing.T) {
		a := New()
		_, err := a.Invoke(context.Background(), userMsg("q"), nil)
		if !errors.Is(err, ErrNoCompleter) {
			t.Fatalf("expected ErrNoCompleter, got: %v", err)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		a := New(WithCompleter(&scripted{replies: []models.Reply{{Content: "  \n"}}}))
		chat, err := a.Invoke(context.Background(), userMsg("q"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, chat.Messages[2].Content, NoAnswer)
	})
}

func TestInvoke_ContextCancel(t *testing.T) {
	a := New(WithCompleter(blocking{}))
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		a.Invoke(ctx, userMsg("q"), nil)
	}, time.Second)
}

func TestLimitToolOutput(t *testing.T) {
	testboil.FailTestIfDiff(t, limitToolOutput("short", 10), "short")
	testboil.FailTestIfDiff(t, limitToolOutput("anything", 0), "anything")

	got := limitToolOutput("日本語のテキスト", 3)
	if !strings.HasPrefix(got, "日本語...") {
		t.Fatalf("expected rune correct truncation, got: %q", got)
	}
	testboil.AssertStringContains(t, got, "and 5 more characters")
}
