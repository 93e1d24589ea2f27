package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-analyzer/internal/observability"
	"github.com/jonathan/brand-analyzer/internal/research"
	"github.com/jonathan/brand-analyzer/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search public sources for a company",
	Long:  "Runs the search strategy chain for a company name or URL and prints the evidence block the model would receive.",
	RunE:  runSearch,
}

var (
	searchQuery   string
	searchVerbose bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Company name or URL (required)")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print the winning strategy and results to stderr")

	if err := searchCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
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

	return writeSearchEvidence(cmd.Context(), a.searcher, searchQuery, searchVerbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// writeSearchEvidence prints the evidence block for query to out. Verbose
// mode also prints the winning strategy and each result to errOut.
func writeSearchEvidence(ctx context.Context, searcher *research.Aggregator, query string, verbose bool, out, errOut io.Writer) error {
	var block string
	if verbose {
		strategy, snippets := searcher.Search(ctx, query)
		observability.NewPrinter(errOut).PrintSearchResults(strategy, snippets)
		block = types.RenderSnippets(snippets)
	} else {
		block = searcher.SearchCompany(ctx, query)
	}

	if block == "" {
		_, err := fmt.Fprintln(errOut, "no search results")
		return err
	}
	_, err := fmt.Fprintln(out, block)
	return err
}
