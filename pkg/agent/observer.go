package agent

import pub_models "github.com/baalimago/webagent/pkg/text/models"

type StepKind string

const (
	StepModel      StepKind = "model"
	StepToolCall   StepKind = "tool_call"
	StepToolResult StepKind = "tool_result"
	StepAnswer     StepKind = "answer"
)

// Step is one observable event of the loop. Iteration starts at 1 and
// counts model calls.
type Step struct {
	Kind      StepKind         `json:"kind"`
	Iteration int              `json:"iteration"`
	Call      *pub_models.Call `json:"call,omitempty"`
	Output    string           `json:"output,omitempty"`
	Failed    bool             `json:"failed,omitempty"`
}

// Observer is notified of every step, synchronously and in order, on the
// goroutine running Invoke.
type Observer interface {
	OnStep(Step)
}

type ObserverFunc func(Step)

func (f ObserverFunc) OnStep(s Step) {
	f(s)
}

type nop struct{}

func (nop) OnStep(Step) {}

// Nop discards all steps.
var Nop Observer = nop{}
