package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dan1sh0/Baseera-AI/internal/config"
	"github.com/dan1sh0/Baseera-AI/internal/ingest"
	"github.com/dan1sh0/Baseera-AI/internal/store"
	"github.com/dan1sh0/Baseera-AI/internal/vectorindex"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch the corpus from upstream sources and build the search index",
	Long: `Fetches every Quran chapter and the configured hadith collections,
normalizes them into the corpus store, and builds the vector index.
Upstream failures are retried and reported; ingestion is best-effort
and keeps whatever it could collect.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("skip-hadith", false, "ingest only Quran verses")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	skipHadith, _ := cmd.Flags().GetBool("skip-hadith")

	ingestor := &ingest.Ingestor{
		Quran: ingest.NewQuranClient(cfg.QuranBaseURL),
		Retry: ingest.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			Delay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
	}
	if !skipHadith {
		apiKey := os.Getenv(config.HadithAPIKeyEnvVar)
		if apiKey == "" {
			return fmt.Errorf("%s environment variable is required for hadith ingestion (use --skip-hadith to ingest Quran only)", config.HadithAPIKeyEnvVar)
		}
		ingestor.Hadith = ingest.NewHadithClient(cfg.HadithBaseURL, apiKey)
		ingestor.Books = cfg.HadithBooks
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Fetching corpus"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	ingestor.Progress = func(source string, page int) {
		bar.Describe(fmt.Sprintf("Fetching %s (page %d)", source, page))
		bar.Add(1)
	}

	if verbose {
		fmt.Printf("Quran source: %s\n", cfg.QuranBaseURL)
		if !skipHadith {
			fmt.Printf("Hadith collections: %v\n", cfg.HadithBooks)
		}
	}

	res, srcErrs := ingestor.Ingest(ctx)
	bar.Finish()

	fmt.Printf("Ingested %d documents (%d chapters)\n", len(res.Documents), len(res.Surahs))
	for _, e := range srcErrs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", &e)
	}
	if len(res.Documents) == 0 {
		return fmt.Errorf("no documents ingested; refusing to replace existing corpus")
	}

	st, err := store.Open(corpusDBPath(cfg))
	if err != nil {
		return fmt.Errorf("opening corpus store: %w", err)
	}
	defer st.Close()

	if err := st.ReplaceAll(ctx, res.Documents); err != nil {
		return fmt.Errorf("storing corpus: %w", err)
	}
	if err := st.ReplaceSurahs(ctx, res.Surahs); err != nil {
		return fmt.Errorf("storing surah metadata: %w", err)
	}

	embedder, err := createEmbedder(cfg)
	if err != nil {
		return err
	}
	index, err := vectorindex.New(embedder, indexDir(cfg))
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}

	passages, err := passagesFromStore(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("chunking corpus: %w", err)
	}

	fmt.Printf("Embedding %d chunks...\n", len(passages))
	if err := index.Build(ctx, passages); err != nil {
		return fmt.Errorf("building vector index: %w", err)
	}

	fmt.Printf("Index built with %d chunks at %s\n", index.Count(), indexDir(cfg))
	return nil
}
