package preflight

import (
	"context"

	"promptreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options controls which checks run.
type Options struct {
	// Online enables checks that call external APIs.
	Online bool
}

// RunAll executes every preflight check for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Blob directory", cfg.Storage.BlobDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDatabase(ctx, cfg),
	}

	if opts.Online {
		results = append(results, CheckLLM(ctx, "Text generator", cfg.LLM))
	} else {
		results = append(results, CheckCredential("Text generator", cfg.LLM.APIKey, "llm.api_key"))
	}
	results = append(results,
		CheckCredential("Stock media", cfg.Media.PixabayAPIKey, "media.pixabay_api_key"),
		CheckSpeechFromConfig(cfg),
		CheckPublishFromConfig(cfg),
		CheckNotificationsFromConfig(cfg),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
