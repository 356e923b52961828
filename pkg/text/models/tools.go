package models

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// LLMTool is a tool which the agent may expose to a model.
type LLMTool interface {
	// Call the tool with the given Input. Returns output from the tool or an
	// error if the call failed. Errors are reported back to the model as text.
	Call(context.Context, Input) (string, error)

	// Specification which vendors translate into their own tool schema.
	Specification() Specification
}

type Input map[string]any

// String returns the string stored under key, and if it was present as a
// string.
func (i Input) String(key string) (string, bool) {
	v, ok := i[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer stored under key, or dflt if the key is missing.
// JSON numbers arrive as float64, some models send numbers as strings,
// both are accepted.
func (i Input) Int(key string, dflt int) (int, error) {
	v, ok := i[key]
	if !ok || v == nil {
		return dflt, nil
	}
	switch cast := v.(type) {
	case int:
		return cast, nil
	case int64:
		return int(cast), nil
	case float64:
		if cast != math.Trunc(cast) {
			return 0, fmt.Errorf("%v must be an integer, got: %v", key, cast)
		}
		return int(cast), nil
	case json.Number:
		n, err := cast.Int64()
		if err != nil {
			return 0, fmt.Errorf("%v must be an integer: %w", key, err)
		}
		return int(n), nil
	case string:
		if strings.TrimSpace(cast) == "" {
			return dflt, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(cast))
		if err != nil {
			return 0, fmt.Errorf("%v must be an integer: %w", key, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%v must be an integer, got type: %T", key, v)
}

type Call struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Inputs Input  `json:"inputs,omitempty"`
	// ExtraContent carries vendor specific data which has to be echoed back,
	// such as gemini thought signatures.
	ExtraContent map[string]any `json:"extra_content,omitempty"`
}

// PrettyPrint the call, showing name and what input params is used
// on a concise way. Inputs are sorted to keep the output stable.
func (c Call) PrettyPrint() string {
	keys := make([]string, 0, len(c.Inputs))
	for k := range c.Inputs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, fmt.Sprintf("'%v': '%v'", k, c.Inputs[k]))
	}
	return fmt.Sprintf("Call: '%s', inputs: [ %s ]", c.Name, strings.Join(params, ","))
}

// Arguments returns the inputs as a json object string, which is how
// openai-like apis want them.
func (c Call) Arguments() string {
	if c.Inputs == nil {
		return "{}"
	}
	b, err := json.Marshal(c.Inputs)
	if err != nil {
		return "{}"
	}
	return string(b)
}

type Specification struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Inputs      *InputSchema `json:"input_schema,omitempty"`
}

type InputSchema struct {
	Type       string                     `json:"type"`
	Required   []string                   `json:"required"`
	Properties map[string]ParameterObject `json:"properties"`
}

// Patch the input schema, initializing nil fields so that every vendor
// receives a valid json schema object.
func (is *InputSchema) Patch() {
	if is.Required == nil {
		is.Required = make([]string, 0)
	}
	if is.Properties == nil {
		is.Properties = make(map[string]ParameterObject)
	}
	if is.Type == "" {
		is.Type = "object"
	}
}

// IsOk checks if the input schema is ok
func (is *InputSchema) IsOk() bool {
	for _, p := range is.Properties {
		if p.Type == "array" && p.Items == nil {
			return false
		}
	}
	for _, r := range is.Required {
		if _, exists := is.Properties[r]; !exists {
			return false
		}
	}
	return true
}

type ParameterObject struct {
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Enum        *[]string        `json:"enum,omitempty"`
	Items       *ParameterObject `json:"items,omitempty"`
}
