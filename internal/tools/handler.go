package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Invoke the call, and gather both error and output in the same string.
// Failures never escape as errors, they are handed back to the model as text.
func (r *Registry) Invoke(ctx context.Context, call pub_models.Call) string {
	t, exists := r.Get(call.Name)
	if !exists {
		return "ERROR: unknown tool call: " + call.Name
	}
	if misc.Truthy(os.Getenv("DEBUG_CALL")) {
		ancli.Noticef("Invoke call: %v", debug.IndentedJsonFmt(call))
	}
	inp := call.Inputs
	if inp == nil {
		inp = pub_models.Input{}
	}
	out, err := t.Call(ctx, inp)
	if err != nil {
		return fmt.Sprintf("ERROR: failed to run tool: %v, error: %v", call.Name, err)
	}
	return out
}
