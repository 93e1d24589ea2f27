package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-analyzer/internal/observability"
	"github.com/jonathan/brand-analyzer/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one company and print the report as JSON",
	Long:  "Runs the full pipeline (crawl, search, structured extraction) for a company URL and/or name.",
	RunE:  runAnalyze,
}

var (
	analyzeURL     string
	analyzeName    string
	analyzeOut     string
	analyzeVerbose bool
	analyzeArchive bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "Company website URL")
	analyzeCmd.Flags().StringVarP(&analyzeName, "name", "n", "", "Company name")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the JSON result to this file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print progress and a readable summary to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeArchive, "archive", false, "Store the result in the configured report archive")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeURL == "" && analyzeName == "" {
		return fmt.Errorf("one of --url or --name is required")
	}

	cfg, log, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(cmd.Context(), cfg, log, analyzeArchive)
	if err != nil {
		return err
	}
	defer a.Close()

	var onProgress pipeline.ProgressCallback
	if analyzeVerbose {
		onProgress = func(ev pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Step, ev.Message)
		}
	}

	result, err := a.pipeline.Analyze(cmd.Context(), pipeline.Request{URL: analyzeURL, CompanyName: analyzeName}, onProgress)
	if err != nil {
		return err
	}

	if analyzeVerbose {
		observability.NewPrinter(os.Stderr).PrintResult(result)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if analyzeOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(analyzeOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result file %s: %w", analyzeOut, err)
	}
	return nil
}
