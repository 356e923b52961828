// agent runs the tool calling loop of the web browsing assistant.
//
// An agent is, in essence, a bounded state machine: ask the model, run the
// tools it asks for, feed the results back and ask again, until the model
// answers. The difference between agent A and agent B is the prompt, the
// completer and the available tools.
package agent
