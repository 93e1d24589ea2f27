package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-analyzer/internal/observability"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a company website and print the corpus",
	Long:  "Fetches the homepage and the well-known candidate pages and prints the budgeted corpus the model would receive.",
	RunE:  runCrawl,
}

var (
	crawlURL     string
	crawlOut     string
	crawlVerbose bool
)

func init() {
	crawlCmd.Flags().StringVarP(&crawlURL, "url", "u", "", "Company website URL (required)")
	crawlCmd.Flags().StringVarP(&crawlOut, "out", "o", "", "Write the corpus to this file instead of stdout")
	crawlCmd.Flags().BoolVarP(&crawlVerbose, "verbose", "v", false, "Print a page summary to stderr")

	if err := crawlCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(cmd.Context(), cfg, log, false)
	if err != nil {
		return err
	}
	defer a.Close()

	corpus := a.crawler.CrawlSite(cmd.Context(), crawlURL)
	if crawlVerbose {
		observability.NewPrinter(os.Stderr).PrintCorpus(corpus)
	}

	if crawlOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), corpus.Render())
		return err
	}
	if err := os.WriteFile(crawlOut, []byte(corpus.Render()), 0o644); err != nil {
		return fmt.Errorf("failed to write corpus file %s: %w", crawlOut, err)
	}
	return nil
}
