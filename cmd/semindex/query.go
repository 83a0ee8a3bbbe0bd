package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/finvault-ai/semindex/internal/embedding"
	"github.com/finvault-ai/semindex/internal/index"
	"github.com/finvault-ai/semindex/internal/retrieval"
	"github.com/finvault-ai/semindex/internal/storage"
)

var (
	queryDomain   string
	queryLang     string
	queryK        int
	queryCategory string
	querySection  string
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve formatted context for a query from a collection",
	Example: `  semindex query --domain loan --lang en --k 3 "What is the interest rate for home loans?"
  semindex query --domain loan --lang en --category HOME_LOAN "eligibility"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDomain, "domain", "loan", "collection domain: loan or investment")
	queryCmd.Flags().StringVar(&queryLang, "lang", "en", "collection language: en or hi")
	queryCmd.Flags().IntVar(&queryK, "k", 0, "number of results (default from config)")
	queryCmd.Flags().StringVar(&queryCategory, "category", "", "exact-match category filter, e.g. HOME_LOAN")
	queryCmd.Flags().StringVar(&querySection, "section", "", "exact-match section filter, e.g. Eligibility")
}

func runQuery(cmd *cobra.Command, args []string) error {
	domain, err := parseDomain(queryDomain)
	if err != nil {
		return err
	}
	lang, err := parseLanguage(queryLang)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	k := queryK
	if k <= 0 {
		k = cfg.Retrieval.MaxResults
	}

	filter := index.Filter{Section: querySection}
	if queryCategory != "" {
		cat := storage.Category(queryCategory)
		if !cat.Valid() {
			return fmt.Errorf("category %q is not in the canonical enumeration", queryCategory)
		}
		filter.Category = cat
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr), spinner.WithSuffix(" loading index..."))
	spin.Start()
	idx, err := openIndex(ctx, domain, lang)
	spin.Stop()
	if err != nil {
		return err
	}
	defer idx.Close()

	cache, err := buildCache()
	if err != nil {
		return err
	}
	service := retrieval.NewService(idx, cache, logger, cfg.Retrieval.SearchTimeout)

	result := service.GetContext(ctx, query, k, filter)

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"query":   query,
			"k":       k,
			"context": result,
		})
	}

	if result == "" {
		color.Yellow("No matching context found.")
		return nil
	}
	fmt.Println(result)
	return nil
}

// openIndex opens the (domain, language) collection with the configured
// embedder.
func openIndex(ctx context.Context, domain storage.Domain, lang storage.Language) (*index.Index, error) {
	embedder, err := buildEmbedder()
	if err != nil {
		return nil, err
	}
	return index.Open(ctx, cfg.IndexPath(string(domain), string(lang)), embedder,
		logger.WithCollection(string(domain), string(lang)), index.Options{
			EmbedBatchSize:      cfg.Ingestion.EmbedBatchSize,
			MaxConcurrentEmbeds: cfg.Ingestion.MaxConcurrentEmbeds,
		})
}

// buildCache constructs the query context cache per the configured driver.
func buildCache() (retrieval.ContextStore, error) {
	if cfg.Cache.Driver == "redis" {
		return retrieval.NewRedisContextCache(retrieval.RedisCacheConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			TTL:      cfg.Cache.TTL,
		}, logger)
	}
	return retrieval.NewContextCache(retrieval.ContextCacheConfig{
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.MaxEntries,
	}), nil
}

func buildEmbedder() (embedding.Embedder, error) {
	if cfg.Embedding.Provider == "api" {
		return embedding.NewClient(embedding.Config{
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
	}
	return embedding.NewLocalEmbedder(cfg.Embedding.Dimension), nil
}
