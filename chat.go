package main

import (
	"github.com/baalimago/webagent/internal/chat"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := setup()
			choice := conf.Model()
			if model != "" {
				c, err := vendors.ParseChoice(model)
				if err != nil {
					return err
				}
				choice = c
			}
			svc, _, err := a.service(conf)
			if err != nil {
				return err
			}
			return chat.NewREPL(svc, choice, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to start with, one of the labels listed by '/models'")
	return cmd
}
