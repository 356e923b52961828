package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

type stubTool struct {
	name string
	out  string
	err  error
	got  pub_models.Input
}

func (s *stubTool) Call(_ context.Context, in pub_models.Input) (string, error) {
	s.got = in
	return s.out, s.err
}

func (s *stubTool) Specification() pub_models.Specification {
	return pub_models.Specification{Name: s.name}
}

func TestRegistry(t *testing.T) {
	a := &stubTool{name: "b_tool"}
	b := &stubTool{name: "a_tool"}
	r := NewRegistry(a, b)

	got, ok := r.Get("b_tool")
	if !ok || got != a {
		t.Fatal("expected to find b_tool")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("did not expect to find missing tool")
	}
	testboil.FailTestIfDiff(t, strings.Join(r.Names(), ","), "a_tool,b_tool")
	specs := r.Specifications()
	testboil.FailTestIfDiff(t, len(specs), 2)
	testboil.FailTestIfDiff(t, specs[0].Name, "a_tool")
	testboil.FailTestIfDiff(t, len(r.Tools()), 2)

	replacement := &stubTool{name: "a_tool", out: "new"}
	r.Set(replacement)
	testboil.FailTestIfDiff(t, len(r.Names()), 2)
	got, _ = r.Get("a_tool")
	if got != replacement {
		t.Fatal("expected Set to replace tool with same name")
	}
}

func TestInvoke(t *testing.T) {
	ok := &stubTool{name: "ok", out: "output"}
	failing := &stubTool{name: "failing", err: errors.New("boom")}
	r := NewRegistry(ok, failing)

	t.Run("it should return tool output", func(t *testing.T) {
		got := r.Invoke(context.Background(), pub_models.Call{Name: "ok", Inputs: pub_models.Input{"a": "b"}})
		testboil.FailTestIfDiff(t, got, "output")
		testboil.FailTestIfDiff(t, ok.got["a"].(string), "b")
	})

	t.Run("it should pass empty input on nil inputs", func(t *testing.T) {
		r.Invoke(context.Background(), pub_models.Call{Name: "ok"})
		if ok.got == nil {
			t.Fatal("expected non-nil input")
		}
	})

	t.Run("it should convert errors to text", func(t *testing.T) {
		got := r.Invoke(context.Background(), pub_models.Call{Name: "failing"})
		testboil.FailTestIfDiff(t, got, "ERROR: failed to run tool: failing, error: boom")
	})

	t.Run("it should report unknown tools", func(t *testing.T) {
		got := r.Invoke(context.Background(), pub_models.Call{Name: "nope"})
		testboil.FailTestIfDiff(t, got, "ERROR: unknown tool call: nope")
	})
}
