package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/agent"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/filtering"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one profile, or a directory of profiles, against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("profile", "p", "", "profile file: .json for structured fields, anything else is read as markup")
	analyzeCmd.Flags().StringP("job", "J", "", "file with the job description")
	analyzeCmd.Flags().StringP("batch", "b", "", "directory of profile files to analyze concurrently")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "ask for confirmation before sending any notification")
	analyzeCmd.Flags().StringP("exclude-file", "e", "", "file with candidates to skip in batch mode. Default is unset.")
	analyzeCmd.Flags().Bool("append-excluded", false, "append analyzed batch candidates to the exclude file")
	analyzeCmd.Flags().BoolP("do-not-exclude-analyzed", "f", false, "analyze batch candidates even if a successful run is recorded")
}

// batchItem is one line of the batch report.
type batchItem struct {
	Label  string           `json:"label"`
	Result *agent.RunResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()

	profilePath, _ := cmd.Flags().GetString("profile")
	jobPath, _ := cmd.Flags().GetString("job")
	batchDir, _ := cmd.Flags().GetString("batch")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if jobPath == "" {
		log.Fatal("job description file is required", zap.String("hint", "pass --job FILE"))
	}
	if (profilePath == "") == (batchDir == "") {
		log.Fatal("exactly one of --profile and --batch is required")
	}

	job, err := os.ReadFile(jobPath)
	if err != nil {
		log.Fatal("reading job description", zap.Error(err))
	}

	rt, err := newPipeline(ctx, config, interactive, log)
	if err != nil {
		log.Fatal("preparing analysis", zap.Error(err))
	}
	defer rt.Close()

	out := cmd.OutOrStdout()

	if batchDir != "" {
		requests, err := loadBatch(batchDir, string(job))
		if err != nil {
			log.Fatal("loading batch", zap.Error(err))
		}

		excludeFile, _ := cmd.Flags().GetString("exclude-file")
		force, _ := cmd.Flags().GetBool("do-not-exclude-analyzed")

		requests, err = screenBatch(ctx, rt, requests, excludeFile, force, log)
		if err != nil {
			log.Fatal("filtering failed", zap.Error(err))
		}
		if len(requests) == 0 {
			log.Info("exiting", zap.String("reason", "no profiles left after filters"))
			return
		}

		concurrency := 0
		if config.Agent != nil {
			concurrency = config.Agent.Concurrency
		}
		// Prompts from parallel runs would interleave on the terminal.
		if interactive {
			concurrency = 1
		}

		log.Info("starting batch analysis", zap.Int("count", len(requests)), zap.Int("concurrency", concurrency))
		outcomes := rt.service.AnalyzeBatch(ctx, requests, concurrency)

		items := make([]batchItem, 0, len(outcomes))
		for _, o := range outcomes {
			item := batchItem{Label: o.Label, Result: o.Result}
			if o.Err != nil {
				item.Error = o.Err.Error()
			}
			items = append(items, item)
		}

		if err := writeJSON(out, items); err != nil {
			log.Fatal("writing results", zap.Error(err))
		}

		if appendExcluded, _ := cmd.Flags().GetBool("append-excluded"); appendExcluded && excludeFile != "" {
			if err := appendToExcludeFile(excludeFile, requests, outcomes); err != nil {
				log.Fatal("appending to exclude file", zap.Error(err))
			}
			log.Info("appended to exclude file", zap.String("filename", excludeFile))
		}
		return
	}

	p, err := loadProfile(profilePath)
	if err != nil {
		log.Fatal("loading profile", zap.Error(err))
	}

	result, err := rt.service.Analyze(ctx, p, string(job))
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		if result == nil {
			result = &agent.RunResult{Success: false, Message: agent.FailedMessage, Error: err.Error()}
		}
	}

	if err := writeJSON(out, result); err != nil {
		log.Fatal("writing result", zap.Error(err))
	}
}

func screenBatch(ctx context.Context, rt *pipeline, requests []analysis.Request, excludeFile string, force bool, log *zap.Logger) ([]analysis.Request, error) {
	deps := filtering.Deps{Logger: log}
	if rt.store != nil {
		deps.History = rt.store
	}
	if rt.config.Agent != nil {
		deps.MaxProfileChars = rt.config.Agent.MaxProfileChars
	}

	steps := []filtering.Filter{
		filtering.NewEmptyProfile(),
		filtering.NewDuplicates(),
		filtering.NewExcludeFile(excludeFile),
		filtering.NewAlreadyAnalyzed(force),
	}
	if deps.History == nil {
		filtering.DisableByName(steps, "already_analyzed", "run history is disabled")
	}

	return filtering.Run(ctx, deps, steps, requests)
}

// appendToExcludeFile records every candidate whose run finished successfully.
func appendToExcludeFile(path string, requests []analysis.Request, outcomes []analysis.Outcome) error {
	excluded, err := filtering.LoadExcluded(path)
	if err != nil {
		return err
	}

	done := make([]analysis.Request, 0, len(requests))
	for i, o := range outcomes {
		if o.Err == nil && o.Result != nil && o.Result.Success {
			done = append(done, requests[i])
		}
	}

	excluded.Append(filtering.ToExcluded(done))
	return excluded.ToFile(path)
}

// loadProfile reads .json files as structured fields and everything else as markup.
func loadProfile(path string) (profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return profile.Profile{}, fmt.Errorf("decoding profile %s: %w", path, err)
		}
		return profile.FromValue(value)
	}

	return profile.FromValue(string(data))
}

func loadBatch(dir, job string) ([]analysis.Request, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no profile files in %s", dir)
	}

	requests := make([]analysis.Request, 0, len(names))
	for _, name := range names {
		p, err := loadProfile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		requests = append(requests, analysis.Request{Label: name, Profile: p, JobDescription: job})
	}
	return requests, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
