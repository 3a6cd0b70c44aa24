package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"promptreel/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: workflow manager and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving API on %s (config: %s)\n", cfg.Paths.APIBind, displayPath(ctx))
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	return cmd
}

func displayPath(ctx *commandContext) string {
	if !ctx.configSeen {
		return "defaults"
	}
	return ctx.configPath
}
