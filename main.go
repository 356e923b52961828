package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/webagent/internal/chat"
	"github.com/baalimago/webagent/internal/config"
	"github.com/baalimago/webagent/internal/fetch"
	"github.com/baalimago/webagent/internal/search"
	"github.com/baalimago/webagent/internal/session"
	"github.com/baalimago/webagent/internal/tools"
	"github.com/baalimago/webagent/pkg/agent"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"github.com/spf13/cobra"
)

const long = `webagent - a chat agent which answers questions by searching and reading the web

Prerequisites:
  - Set OPENAI_API_KEY, ANTHROPIC_API_KEY and/or GEMINI_API_KEY for the models you wish to use
  - (Optional) Set BRAVE_API_KEY or TAVILY_API_KEY to search with those instead of DuckDuckGo
  - (Optional) Put the variables in a .env file in the working directory

Configuration is stored in <config dir>/webagent/config.json, which is created
with defaults on first run. Override the directory with WEBAGENT_CONFIG_DIR.`

// app carries what the commands need from the outside world.
type app struct {
	in  io.Reader
	out io.Writer

	// newModel overrides how models are created, nil uses the vendors.
	newModel chat.ModelFactory
}

func main() {
	ancli.SetupSlog()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { shutdown.Monitor(cancel) }()
	a := &app{in: os.Stdin, out: os.Stdout}
	code := a.run(ctx, os.Args[1:])
	cancel()
	if code == 0 && misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("things seems to have worked out. Bye bye! 🚀\n")
	}
	os.Exit(code)
}

func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	if err := root.ExecuteContext(ctx); err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webagent",
		Short:         "Chat with an agent which browses the web",
		Long:          long,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(a.serveCmd(), a.chatCmd(), versionCmd())
	return root
}

// setup loads .env and the config file. Both are allowed to fail, the
// defaults are used instead.
func setup() config.Config {
	if err := config.LoadDotEnv(".env"); err != nil {
		ancli.PrintWarn(fmt.Sprintf("%v\n", err))
	}
	dir, err := config.Dir()
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to find config dir, using defaults: %v\n", err))
		return config.Default
	}
	conf, err := config.Load(dir)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to load config, using defaults: %v\n", err))
	}
	return conf
}

// service wires search, fetch and the session store into a chat service.
// The tools are returned so they may be exposed elsewhere.
func (a *app) service(conf config.Config) (*chat.Service, []pub_models.LLMTool, error) {
	provider, err := search.New(conf.SearchProvider, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup search provider: %w", err)
	}
	ttl, err := conf.TTL()
	if err != nil {
		return nil, nil, err
	}
	ts := []pub_models.LLMTool{
		tools.NewWebSearch(provider, conf.SearchMaxResults),
		tools.NewFetchPage(fetch.New(fetch.WithPageRunes(conf.FetchPageRunes))),
	}
	opts := []chat.Option{
		chat.WithAgentOptions(
			agent.WithMaxIterations(conf.MaxIterations),
			agent.WithToolOutputRuneLimit(conf.ToolOutputRuneLimit),
		),
	}
	if a.newModel != nil {
		opts = append(opts, chat.WithModelFactory(a.newModel))
	}
	return chat.NewService(session.NewStore(ttl), ts, opts...), ts, nil
}
