package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/user"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/webagent/internal/session"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/baalimago/webagent/pkg/agent"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const replUsage = `Commands:
  /reset            Clear the conversation.
  /model <label>    Switch model, the conversation is kept.
  /models           List the available models.
  /help             Show this message.
  exit | quit       Leave.
`

// maxShortenedLines of tool output shown in the terminal.
const maxShortenedLines = 5

// REPL is the terminal shell. It owns a single session.
type REPL struct {
	svc      *Service
	sess     *session.Session
	in       *bufio.Reader
	out      io.Writer
	username string
}

func NewREPL(svc *Service, model vendors.Choice, in io.Reader, out io.Writer) *REPL {
	username := "user"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	return &REPL{
		svc:      svc,
		sess:     svc.Store.Create(model),
		in:       bufio.NewReader(in),
		out:      out,
		username: username,
	}
}

// Run reads prompts until exit, EOF or ctx is cancelled. Failed turns are
// printed and the loop carries on.
func (r *REPL) Run(ctx context.Context) error {
	for _, m := range r.sess.Display() {
		r.printMessage(m)
	}
	fmt.Fprintf(r.out, "(model: %v, '/help' for commands)\n", r.sess.Model())
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(r.out, "%v: ", ancli.ColoredMessage(ancli.CYAN, r.username))
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read user input: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		line = strings.TrimSpace(line)
		switch {
		case line == "exit" || line == "quit":
			return nil
		case line == "":
		case strings.HasPrefix(line, "/"):
			r.command(line)
		default:
			r.turn(ctx, line)
		}
		if eof {
			fmt.Fprintln(r.out)
			return nil
		}
	}
}

func (r *REPL) command(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/reset":
		r.sess.Reset()
		ancli.PrintOK("conversation cleared\n")
		r.printMessage(r.sess.Display()[0])
	case "/model":
		c, err := vendors.ParseChoice(arg)
		if err != nil {
			ancli.PrintErr(fmt.Sprintf("%v\n", err))
			return
		}
		r.sess.SetModel(c)
		ancli.PrintOK(fmt.Sprintf("model set to: '%v'\n", c))
		r.printMessage(r.sess.Display()[0])
	case "/models":
		for _, c := range vendors.Choices() {
			marker := " "
			if c == r.sess.Model() {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%v %v\n", marker, c)
		}
	case "/help":
		fmt.Fprint(r.out, replUsage)
	default:
		ancli.PrintWarn(fmt.Sprintf("unknown command: '%v'\n", cmd))
		fmt.Fprint(r.out, replUsage)
	}
}

func (r *REPL) turn(ctx context.Context, prompt string) {
	obs := agent.ObserverFunc(r.printStep)
	t, err := r.svc.Send(ctx, r.sess, prompt, obs)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("turn failed: %v\n", err))
		return
	}
	r.printMessage(pub_models.Message{Role: pub_models.RoleAssistant, Content: t.Answer})
}

func (r *REPL) printStep(s agent.Step) {
	switch s.Kind {
	case agent.StepToolCall:
		fmt.Fprintf(r.out, "%v: %v\n", ancli.ColoredMessage(ancli.BLUE, "tool call"), s.Call.PrettyPrint())
	case agent.StepToolResult:
		fmt.Fprintf(r.out, "%v: %v\n", ancli.ColoredMessage(ancli.MAGENTA, "tool"), shortenedOutput(s.Output, maxShortenedLines))
	}
}

func (r *REPL) printMessage(m pub_models.Message) {
	role := m.Role
	color := ancli.BLUE
	if m.Role == pub_models.RoleUser {
		color = ancli.CYAN
		role = r.username
	}
	fmt.Fprintf(r.out, "%v: %v\n", ancli.ColoredMessage(color, role), m.Content)
}

// shortenedOutput keeps the first maxLines lines of out.
func shortenedOutput(out string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return fmt.Sprintf("%v\n... and %v more lines", strings.Join(lines[:maxLines], "\n"), len(lines)-maxLines)
}
