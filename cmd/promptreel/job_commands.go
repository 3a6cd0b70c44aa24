package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"promptreel/internal/api"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "create <prompt>",
		Short: "Submit a prompt as a new job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			job, err := client.CreateJob(cmd.Context(), prompt)
			if err != nil {
				return wrapAPIError(err, ctx.config.Paths.APIBind)
			}
			if jsonOutput {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created job %s (%s)\n", job.ID, job.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the created job as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			job, err := client.GetJob(cmd.Context(), id)
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("job %s not found", id)
				}
				return wrapAPIError(err, ctx.config.Paths.APIBind)
			}
			switch outFormat {
			case formatJSON:
				return writeJSON(cmd, job)
			case formatYAML:
				return writeYAML(cmd, job)
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, jobDetailRows(job, colorize), nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must be positive")
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			list, err := client.ListJobs(cmd.Context(), limit)
			if err != nil {
				return wrapAPIError(err, ctx.config.Paths.APIBind)
			}
			if jsonOutput {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(list))
			for _, job := range list {
				rows = append(rows, []string{
					job.ID,
					colorizeStatus(job.Status, colorize),
					job.Stage,
					summarize(firstNonEmpty(job.Title, job.Prompt), 40),
					job.CreatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Stage", "Title", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum jobs to list (server default when 0)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print jobs as JSON")
	return cmd
}

func jobDetailRows(job api.Job, colorize bool) [][]string {
	rows := [][]string{
		{"ID", job.ID},
		{"Prompt", job.Prompt},
		{"Status", colorizeStatus(job.Status, colorize)},
	}
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, []string{label, value})
		}
	}
	add("Stage", job.Stage)
	add("Title", job.Title)
	add("Description", job.Description)
	add("Tags", strings.Join(job.Tags, ", "))
	add("Image query", job.ImageSearchQuery)
	add("Video query", job.VideoSearchQuery)
	add("Audio", job.Artifacts.Audio)
	if n := len(job.Artifacts.VideoClips); n > 0 {
		add("Video clips", strconv.Itoa(n)+": "+strings.Join(job.Artifacts.VideoClips, ", "))
	}
	add("Music", job.Artifacts.Music)
	add("Thumbnail", job.Artifacts.Thumbnail)
	add("Normalized audio", job.Artifacts.NormalizedAudio)
	add("Subtitles", job.Artifacts.Subtitles)
	add("Final video", job.Artifacts.Final)
	add("Published", job.PublishedURL)
	add("Error", job.ErrorMessage)
	add("Created", job.CreatedAt)
	add("Started", job.StartedAt)
	add("Ended", job.EndedAt)
	return rows
}

func summarize(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
