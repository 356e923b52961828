// Package models contains the public data structures shared by the agent,
// the vendors and the tools. These types are intentionally small and
// decoupled from vendor wire formats so that every vendor can translate to
// and from them.
//
// The main entry points are:
//
//   - Chat:    a conversation consisting of ordered Messages.
//   - Message: a single chat message, optionally carrying tool calls or
//     the output of a tool call.
//   - Call:    a request from the model to invoke a tool.
//   - LLMTool, Specification, InputSchema, ParameterObject: types that
//     describe tools in a JSON-schema compatible way.
package models
