package models

import (
	"context"
	"fmt"

	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Completer is implemented by every vendor. A completion is a single round
// trip to the model, the agent loop is driven elsewhere.
type Completer interface {
	// Setup reads credentials and prepares the client. A missing credential
	// is reported here and not at construction.
	Setup() error

	// Complete the chat. tools may be empty, in which case the model is not
	// offered any tools. With ToolChoiceNone the tools are still declared,
	// since the chat may hold earlier calls, but the model must answer in text.
	Complete(ctx context.Context, chat pub_models.Chat, tools []pub_models.Specification, choice ToolChoice) (Reply, error)
}

// ToolChoice tells the model whether it may call the declared tools.
type ToolChoice int

const (
	ToolChoiceAuto ToolChoice = iota
	ToolChoiceNone
)

// Reply from a model. A reply without Calls is a final answer.
type Reply struct {
	Content string
	Calls   []pub_models.Call
}

// ModelError wraps any failure of a model round trip.
type ModelError struct {
	Vendor string
	Model  string
	Err    error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %v/%v: %v", e.Vendor, e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
