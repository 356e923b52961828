package main

import (
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/webagent/internal/config"
	"github.com/baalimago/webagent/internal/mcpserver"
	"github.com/baalimago/webagent/internal/web"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		listen    string
		enableMCP bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat page, the REST api and the step stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := setup()
			if cmd.Flags().Changed("listen") {
				conf.Listen = listen
			}
			conf.EnableMCP = conf.EnableMCP || enableMCP

			svc, ts, err := a.service(conf)
			if err != nil {
				return err
			}
			v := version()
			srv := web.New(svc, web.WithDefaultModel(conf.Model()), web.WithVersion(v))
			if conf.EnableMCP {
				srv.Mount(mcpserver.EndpointPath, mcpserver.Handler(mcpserver.New(v, ts...)))
				ancli.Okf("serving tools over mcp at: '%v'\n", mcpserver.EndpointPath)
			}
			ancli.Okf("serving webagent at: '%v', default model: '%v'\n", conf.Listen, conf.Model())
			return srv.Run(cmd.Context(), conf.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", config.Default.Listen, "address to listen on, overrides the config file")
	cmd.Flags().BoolVar(&enableMCP, "mcp", false, "also serve web_search and fetch_page as an mcp server")
	return cmd
}
