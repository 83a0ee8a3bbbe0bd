package ingest

import "github.com/finvault-ai/semindex/internal/storage"

// DetectLanguage classifies a text span by script. Any Devanagari code point
// marks the span as Hindi; otherwise it defaults to English. Single pass.
func DetectLanguage(text string) storage.Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return storage.LanguageHindi
		}
	}
	return storage.LanguageEnglish
}
