package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finvault-ai/semindex/internal/ingest"
	"github.com/finvault-ai/semindex/internal/storage"
)

var (
	ingestSource string
	ingestDomain string
	ingestLang   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into a (domain, language) collection",
	Example: `  semindex ingest --source ./docs/loans --domain loan --lang en
  semindex ingest --source ppf_scheme_details.txt --domain investment --lang hi`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "document file or directory to ingest (required)")
	ingestCmd.Flags().StringVar(&ingestDomain, "domain", "loan", "coarse document domain: loan or investment")
	ingestCmd.Flags().StringVar(&ingestLang, "lang", "en", "collection language: en or hi")
	_ = ingestCmd.MarkFlagRequired("source")
}

func runIngest(cmd *cobra.Command, args []string) error {
	domain, err := parseDomain(ingestDomain)
	if err != nil {
		return err
	}
	lang, err := parseLanguage(ingestLang)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	idx, err := openIndex(ctx, domain, lang)
	if err != nil {
		return err
	}
	defer idx.Close()

	assembler := ingest.NewAssembler(ingest.AssemblerConfig{
		MinChunkSize:      cfg.Ingestion.MinChunkSize,
		MaxChunkSize:      cfg.Ingestion.MaxChunkSize,
		PreserveHeadLines: cfg.Ingestion.PreserveHeadLines,
	}, ingest.NewNormalizer())

	pipeline := ingest.NewPipeline(logger.WithCollection(string(domain), string(lang)), assembler, idx)

	// Size the bar before the run; the pipeline resolves the same set.
	sources, err := ingest.ResolveSources(ingestSource)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	res, err := pipeline.Ingest(ctx, ingest.Request{
		SourcePath: ingestSource,
		Domain:     domain,
		Progress:   func(string) { _ = bar.Add(1) },
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", ingestSource, err)
	}
	_ = bar.Finish()

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"collection": idx.Path(),
			"documents":  res.DocumentsRead,
			"failed":     res.DocumentsFailed,
			"chunks":     res.ChunksCreated,
		})
	}

	color.Green("Ingested %d document(s) into %s", res.DocumentsRead, idx.Path())
	fmt.Printf("  chunks indexed: %d\n", res.ChunksCreated)
	if res.DocumentsFailed > 0 {
		color.Yellow("  documents skipped: %d", res.DocumentsFailed)
	}
	return nil
}

func parseDomain(s string) (storage.Domain, error) {
	switch s {
	case "loan":
		return storage.DomainLoan, nil
	case "investment":
		return storage.DomainInvestment, nil
	}
	return "", fmt.Errorf("invalid domain %q (expected loan or investment)", s)
}

func parseLanguage(s string) (storage.Language, error) {
	switch s {
	case "en":
		return storage.LanguageEnglish, nil
	case "hi":
		return storage.LanguageHindi, nil
	}
	return "", fmt.Errorf("invalid language %q (expected en or hi)", s)
}
