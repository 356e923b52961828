package main

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with buildflag if built in pipeline and not using go install
var BuildVersion = ""

func version() string {
	if BuildVersion != "" {
		return BuildVersion
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "dev"
	}
	return bi.Main.Version
}

func versionCmd() *cobra.Command {
	var deps bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %v\n", version())
			if !deps {
				return nil
			}
			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return errors.New("failed to read build info")
			}
			for _, dep := range bi.Deps {
				fmt.Fprintf(out, "%s %s\n", dep.Path, dep.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deps, "deps", false, "also print the dependencies")
	return cmd
}
