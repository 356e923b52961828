// This file contains tests intended to be used by the implementations of
// the Completer interface
package models

import (
	"context"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Completer_Test checks that a blocking completion returns once its
// context is cancelled.
func Completer_Test(t *testing.T, c Completer) {
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		c.Complete(ctx, pub_models.Chat{Messages: []pub_models.Message{
			{Role: pub_models.RoleUser, Content: "hello"},
		}}, nil, ToolChoiceAuto)
	}, time.Second)
}
