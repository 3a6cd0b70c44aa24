package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"promptreel/internal/api"
	"promptreel/internal/deps"
	"promptreel/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Online: online})
			statuses := preflight.CheckSystemDeps(cfg)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			lines = append(lines, renderStatusLine("Config file", statusInfo, displayPath(ctx), colorize))
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(statuses, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Daemon", colorize)...)
			lines = append(lines, daemonLine(cmd, ctx, colorize))
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			problems := len(preflight.Failed(results)) + len(deps.Missing(statuses))
			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also call the text generation API to verify credentials")
	return cmd
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses))
	for _, status := range statuses {
		switch {
		case status.Available:
			lines = append(lines, renderStatusLine(status.Name, statusOK, "Ready ("+firstNonEmpty(status.Path, status.Command)+")", colorize))
		case status.Optional:
			lines = append(lines, renderStatusLine(status.Name, statusWarn, status.Detail, colorize))
		default:
			lines = append(lines, renderStatusLine(status.Name, statusError, status.Detail, colorize))
		}
	}
	return lines
}

// daemonLine reports whether the API answers. A stopped daemon is not a
// problem for doctor, so it only warns.
func daemonLine(cmd *cobra.Command, ctx *commandContext, colorize bool) string {
	client, err := ctx.apiClient()
	if err != nil {
		return renderStatusLine("API", statusWarn, err.Error(), colorize)
	}
	health, err := client.Health(cmd.Context())
	if err != nil {
		msg := err.Error()
		if errors.Is(err, api.ErrAPIUnavailable) {
			msg = "Not running at " + ctx.config.Paths.APIBind
		}
		return renderStatusLine("API", statusWarn, msg, colorize)
	}
	kind := statusOK
	if health.Status != api.HealthOK {
		kind = statusWarn
	}
	return renderStatusLine("API", kind, fmt.Sprintf("%s (%d active)", health.Status, len(health.ActiveJobs)), colorize)
}
