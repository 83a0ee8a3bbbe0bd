package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/finvault-ai/semindex/internal/storage"
)

// AssemblerConfig bounds chunk sizes.
type AssemblerConfig struct {
	MinChunkSize      int
	MaxChunkSize      int
	PreserveHeadLines int
}

// Assembler routes section text through the table, FAQ, and paragraph
// strategies and builds final chunk metadata.
type Assembler struct {
	cfg  AssemblerConfig
	norm *Normalizer
	pre  *Preprocessor
}

// NewAssembler creates an assembler with the given size bounds.
func NewAssembler(cfg AssemblerConfig, norm *Normalizer) *Assembler {
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = 50
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 1200
	}
	return &Assembler{
		cfg:  cfg,
		norm: norm,
		pre:  NewPreprocessor(cfg.PreserveHeadLines),
	}
}

// Sequencer hands out per-(category, language, section) sequence numbers.
// One sequencer spans an entire ingestion run: two documents of the same
// category must not reissue the same chunk IDs, or the later document's
// chunks overwrite the earlier ones on upsert.
type Sequencer map[string]int

// NewSequencer creates an empty sequencer for one ingestion run.
func NewSequencer() Sequencer { return make(Sequencer) }

func (s Sequencer) next(cat storage.Category, lang storage.Language, section string) int {
	key := string(cat) + "|" + string(lang) + "|" + section
	n := s[key]
	s[key] = n + 1
	return n
}

// Assemble converts one document into retrievable chunks. The language is
// detected once per document and threaded through every chunk. The caller
// owns the sequencer and reuses it across every document of the run.
func (a *Assembler) Assemble(doc storage.Document, seqs Sequencer) ([]storage.Chunk, error) {
	text := a.pre.Clean(doc.Text)
	lang := DetectLanguage(text)

	baseCat, baseSub := a.norm.NormalizeFilename(doc.Source, doc.Domain)
	if baseCat.IsUnknown() {
		// Fall back to the document head, which the preprocessor preserved.
		head := firstLines(text, a.cfg.PreserveHeadLines)
		baseCat, baseSub = a.norm.Normalize(head, doc.Domain, "")
	}

	var chunks []storage.Chunk

	for _, section := range SplitSections(text) {
		sectionChunks, err := a.assembleSection(doc, section, baseCat, baseSub, lang, seqs)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, sectionChunks...)
	}

	return chunks, nil
}

// assembleSection routes one section. Tables are handled before category
// refinement because sub-category refinement for tables comes from the table
// headers themselves.
func (a *Assembler) assembleSection(doc storage.Document, section Section, baseCat storage.Category, baseSub storage.SubCategory, lang storage.Language, seqs Sequencer) ([]storage.Chunk, error) {
	subKeywords := keywordList(a.norm.SubCategoryKeywords(expandBase(baseCat)))

	conv := NewTableConverter(subKeywords)
	if conv.Detect(section.Text, subKeywords) {
		if table := conv.Convert(section.Text); table != nil {
			return a.tableChunks(table, expandBase(baseCat), lang, normalizeSectionLabel(section.Label), seqs)
		}
		// Table parse yielded no rows; fall through to the next-most-generic
		// strategy rather than dropping the section.
	}

	if section.Label == SectionFAQ || IsFAQSection(section.Text) {
		if pairs := ExtractQA(section.Text); len(pairs) > 0 {
			return a.faqChunks(pairs, baseCat, baseSub, lang, seqs)
		}
	}

	// Refine category from section text before paragraph chunking.
	cat, sub := a.norm.Normalize(section.Label, doc.Domain, section.Text)
	if cat.IsUnknown() {
		cat, sub = baseCat, baseSub
	}

	return a.paragraphChunks(doc, section, cat, sub, lang, seqs)
}

// tableChunks runs the multi-category splitter and materializes its pieces.
func (a *Assembler) tableChunks(table *Table, base storage.Category, lang storage.Language, section string, seqs Sequencer) ([]storage.Chunk, error) {
	var chunks []storage.Chunk
	for _, piece := range SplitTable(table, base, a.norm) {
		content := piece.Table.Render()
		chunk, err := storage.NewChunk(content, piece.Category, piece.SubCategory, lang, section,
			seqs.next(piece.Category, lang, section))
		if err != nil {
			return nil, err
		}
		chunk.IsTable = true
		chunk.FullTable = piece.FullTable
		chunk.Keywords = ExtractKeywords(content)
		chunks = append(chunks, *chunk)
	}
	return chunks, nil
}

// faqChunks groups question/answer pairs into size-bounded chunks.
func (a *Assembler) faqChunks(pairs []QAPair, cat storage.Category, sub storage.SubCategory, lang storage.Language, seqs Sequencer) ([]storage.Chunk, error) {
	var chunks []storage.Chunk
	for _, content := range GroupQAPairs(pairs, a.cfg.MaxChunkSize) {
		chunk, err := storage.NewChunk(content, cat, sub, lang, SectionFAQ,
			seqs.next(cat, lang, SectionFAQ))
		if err != nil {
			return nil, err
		}
		chunk.IsFAQ = true
		chunk.Keywords = ExtractKeywords(content)
		chunks = append(chunks, *chunk)
	}
	return chunks, nil
}

// paragraphChunks splits section text on paragraph boundaries, accumulating
// until the size bound and flushing at each boundary. Paragraphs containing
// tables still route through the table pipeline mid-split. Undersized
// fragments merge into the previous chunk.
func (a *Assembler) paragraphChunks(doc storage.Document, section Section, cat storage.Category, sub storage.SubCategory, lang storage.Language, seqs Sequencer) ([]storage.Chunk, error) {
	subKeywords := keywordList(a.norm.SubCategoryKeywords(expandBase(cat)))
	conv := NewTableConverter(subKeywords)

	var chunks []storage.Chunk
	var cur strings.Builder

	flush := func() error {
		content := strings.TrimSpace(cur.String())
		cur.Reset()
		if content == "" {
			return nil
		}
		if utf8.RuneCountInString(content) < a.cfg.MinChunkSize && len(chunks) > 0 {
			// Merge the undersized remainder into the previous chunk.
			prev := &chunks[len(chunks)-1]
			prev.Content = prev.Content + "\n\n" + content
			prev.Keywords = ExtractKeywords(prev.Content)
			return nil
		}
		chunk, err := storage.NewChunk(content, cat, sub, lang, normalizeSectionLabel(section.Label),
			seqs.next(cat, lang, normalizeSectionLabel(section.Label)))
		if err != nil {
			return err
		}
		chunk.Keywords = ExtractKeywords(content)
		chunks = append(chunks, *chunk)
		return nil
	}

	for _, para := range strings.Split(section.Text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if conv.Detect(para, subKeywords) {
			if table := conv.Convert(para); table != nil {
				if err := flush(); err != nil {
					return nil, err
				}
				tc, err := a.tableChunks(table, expandBase(cat), lang, normalizeSectionLabel(section.Label), seqs)
				if err != nil {
					return nil, err
				}
				chunks = append(chunks, tc...)
				continue
			}
		}

		if cur.Len() > 0 && cur.Len()+len(para)+2 > a.cfg.MaxChunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// expandBase maps a generic parent to the category whose sub-category
// keywords matter for its comparison tables. A generic business-loan document
// still carries Mudra scheme tables.
func expandBase(cat storage.Category) storage.Category {
	if cat == storage.CategoryBusinessLoan {
		return storage.CategoryMudraLoan
	}
	return cat
}

// normalizeSectionLabel collapses compound labels ("Types - Shishu") into an
// ID-safe section label.
func normalizeSectionLabel(label string) string {
	label = strings.ReplaceAll(label, " - ", "_")
	return strings.ReplaceAll(label, " ", "_")
}

func keywordList(m map[string]storage.SubCategory) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func firstLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
