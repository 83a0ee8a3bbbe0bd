package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	statsDomain string
	statsLang   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for a (domain, language) collection",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDomain, "domain", "loan", "collection domain: loan or investment")
	statsCmd.Flags().StringVar(&statsLang, "lang", "en", "collection language: en or hi")
}

func runStats(cmd *cobra.Command, args []string) error {
	domain, err := parseDomain(statsDomain)
	if err != nil {
		return err
	}
	lang, err := parseLanguage(statsLang)
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

	count, err := idx.Count(ctx)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"collection": idx.Path(),
			"domain":     string(domain),
			"language":   string(lang),
			"chunks":     count,
		})
	}

	color.Cyan("Collection %s_%s", domain, lang)
	fmt.Printf("  path:   %s\n", idx.Path())
	fmt.Printf("  chunks: %d\n", count)
	return nil
}
