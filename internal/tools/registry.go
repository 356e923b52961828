package tools

import (
	"os"
	"slices"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Registry is a threadsafe storage for LLMTools, keyed by specification name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]pub_models.LLMTool
	debug bool
}

// NewRegistry returns a registry holding the given tools.
func NewRegistry(tools ...pub_models.LLMTool) *Registry {
	r := &Registry{
		tools: make(map[string]pub_models.LLMTool),
		debug: misc.Truthy(os.Getenv("DEBUG")),
	}
	for _, t := range tools {
		r.Set(t)
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (pub_models.LLMTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Set registers tool under the name of its specification, replacing any
// previous tool with the same name.
func (r *Registry) Set(t pub_models.LLMTool) {
	name := t.Specification().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debug {
		ancli.Okf("adding tool to registry, name: %v\n", name)
	}
	r.tools[name] = t
}

// Names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]string, 0, len(r.tools))
	for k := range r.tools {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

// Specifications of all registered tools, sorted by name.
func (r *Registry) Specifications() []pub_models.Specification {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]pub_models.Specification, 0, len(names))
	for _, n := range names {
		if t, ok := r.tools[n]; ok {
			ret = append(ret, t.Specification())
		}
	}
	return ret
}

// Tools returns all registered tools, sorted by name.
func (r *Registry) Tools() []pub_models.LLMTool {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]pub_models.LLMTool, 0, len(names))
	for _, n := range names {
		if t, ok := r.tools[n]; ok {
			ret = append(ret, t)
		}
	}
	return ret
}
