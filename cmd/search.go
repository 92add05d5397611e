package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus without generating an answer",
	Long:  `Runs a retrieval query against the corpus and prints the ranked passages.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("type", "hybrid", "search type: lexical, semantic, hybrid")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	mode, _ := cmd.Flags().GetString("type")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.retriever.Retrieve(ctx, query, retriever.ParseMode(mode))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printSearchResultsJSON(results)
	}
	printSearchResultsTable(results)
	return nil
}

type searchResultJSON struct {
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
	MatchedBy string  `json:"matched_by"`
	Citation  string  `json:"citation"`
	Grade     string  `json:"grade,omitempty"`
	Narrator  string  `json:"narrator,omitempty"`
	English   string  `json:"english"`
}

func printSearchResultsJSON(results []retriever.Result) error {
	var out []searchResultJSON
	for i, r := range results {
		out = append(out, searchResultJSON{
			Rank:      i + 1,
			Score:     r.Score,
			MatchedBy: string(r.MatchedBy),
			Citation:  r.Document.Citation(),
			Grade:     string(r.Document.Grade),
			Narrator:  r.Document.Narrator,
			English:   r.Document.English,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSearchResultsTable(results []retriever.Result) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("  %d. [%.4f] %s (%s)\n", i+1, r.Score, r.Document.Attribution(), r.MatchedBy)
		if verbose {
			fmt.Printf("     %s\n\n", r.Document.English)
		} else {
			fmt.Printf("     %s\n\n", truncate(r.Document.English, 160))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
