package models

import (
	"context"
	"testing"

	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

type blockingCompleter struct{}

func (b *blockingCompleter) Setup() error { return nil }

func (b *blockingCompleter) Complete(ctx context.Context, _ pub_models.Chat, _ []pub_models.Specification, _ ToolChoice) (Reply, error) {
	<-ctx.Done()
	return Reply{}, ctx.Err()
}

func TestCompleter_Test(t *testing.T) {
	Completer_Test(t, &blockingCompleter{})
}
