package ingest

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Table is the normalized row/column representation produced from heuristic
// table detection. Rendered output is a text table suitable for LLM
// consumption.
type Table struct {
	Header []string
	Rows   [][]string
}

// Render produces the normalized text table: header row, separator row, one
// row per feature.
func (t *Table) Render() string {
	if t == nil || len(t.Header) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Header)
	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// tableStrategy is one named parsing heuristic. Strategies are applied in
// priority order with explicit fallback; each is independently testable.
type tableStrategy interface {
	name() string
	tryParse(lines []string) (*Table, bool)
}

// TableConverter detects and converts tabular content.
type TableConverter struct {
	strategies []tableStrategy
}

// NewTableConverter builds a converter whose aligned-grid strategy recognizes
// the given sub-category keywords as column names.
func NewTableConverter(subKeywords []string) *TableConverter {
	return &TableConverter{
		strategies: []tableStrategy{
			&markerStrategy{inner: &delimitedStrategy{}},
			&delimitedStrategy{},
			&alignedStrategy{
				columnKeywords: append([]string{
					"feature", "features", "particulars", "criteria",
					"parameter", "details", "विवरण",
				}, subKeywords...),
				rowLabels: []string{
					"loan amount", "amount", "interest rate", "rate of interest",
					"tenure", "repayment", "eligibility", "collateral",
					"processing fee", "margin", "age", "income", "purpose",
					"deposit", "maturity",
					"ऋण राशि", "ब्याज दर", "पात्रता", "अवधि",
				},
			},
		},
	}
}

// Detect reports whether the text looks tabular: an explicit "table:" marker,
// delimiter+quote patterns in at least 2 of the first 5 lines, or at least 2
// distinct sub-category keywords co-occurring in the first 10 lines (the
// signature of a side-by-side comparison table).
func (c *TableConverter) Detect(text string, subKeywords []string) bool {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return false
	}

	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lines[0])), "table:") {
		return true
	}

	delimited := 0
	for i, line := range lines {
		if i >= 5 {
			break
		}
		if looksDelimited(line) {
			delimited++
		}
	}
	if delimited >= 2 {
		return true
	}

	head := strings.ToLower(strings.Join(firstN(lines, 10), "\n"))
	distinct := 0
	for _, kw := range subKeywords {
		if strings.Contains(head, strings.ToLower(kw)) {
			distinct++
		}
	}
	return distinct >= 2
}

// Convert runs the parsing strategies in priority order. A nil result means
// no strategy produced rows and the section falls back to paragraph chunking.
func (c *TableConverter) Convert(text string) *Table {
	lines := nonEmptyLines(text)
	for _, s := range c.strategies {
		if t, ok := s.tryParse(lines); ok && len(t.Rows) > 0 {
			return t
		}
	}
	return nil
}

// markerStrategy handles an explicit "table:" marker line followed by
// delimited rows.
type markerStrategy struct {
	inner *delimitedStrategy
}

func (s *markerStrategy) name() string { return "marker" }

func (s *markerStrategy) tryParse(lines []string) (*Table, bool) {
	if len(lines) == 0 {
		return nil, false
	}
	first := strings.TrimSpace(lines[0])
	if !strings.HasPrefix(strings.ToLower(first), "table:") {
		return nil, false
	}
	return s.inner.tryParse(lines[1:])
}

// delimitedStrategy parses comma/quote-delimited rows. An empty or
// non-matching line ends the table.
type delimitedStrategy struct{}

func (s *delimitedStrategy) name() string { return "delimited" }

func (s *delimitedStrategy) tryParse(lines []string) (*Table, bool) {
	var rows [][]string
	for _, line := range lines {
		if !looksDelimited(line) {
			break
		}
		rows = append(rows, splitDelimited(line))
	}
	if len(rows) < 2 {
		return nil, false
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, true
}

// alignedStrategy parses whitespace-aligned grids. It locates a header line
// containing at least 3 recognized column keywords, records each keyword's
// character offset as a column boundary, then slices subsequent lines that
// begin with a known row label at those offsets.
type alignedStrategy struct {
	columnKeywords []string
	rowLabels      []string
}

func (s *alignedStrategy) name() string { return "aligned" }

func (s *alignedStrategy) tryParse(lines []string) (*Table, bool) {
	headerIdx, offsets, header := s.findHeader(lines)
	if headerIdx < 0 || len(offsets) < 3 {
		return nil, false
	}

	var rows [][]string
	for _, line := range lines[headerIdx+1:] {
		if !s.startsWithRowLabel(line) {
			continue
		}
		rows = append(rows, sliceAtOffsets(line, offsets))
	}
	if len(rows) == 0 {
		return nil, false
	}
	return &Table{Header: header, Rows: rows}, true
}

// findHeader returns the index of the first line containing >=3 recognized
// column keywords, the keyword offsets, and the keyword texts in offset order.
func (s *alignedStrategy) findHeader(lines []string) (int, []int, []string) {
	for i, line := range lines {
		lower := strings.ToLower(line)
		type hit struct {
			offset int
			text   string
		}
		var hits []hit
		for _, kw := range s.columnKeywords {
			idx := strings.Index(lower, strings.ToLower(kw))
			if idx < 0 {
				continue
			}
			// Rune offset, so data lines with non-ASCII text slice cleanly.
			hits = append(hits, hit{offset: utf8.RuneCountInString(lower[:idx]), text: kw})
		}
		if len(hits) < 3 {
			continue
		}
		// Offsets must be distinct, left to right.
		sort.Slice(hits, func(a, b int) bool { return hits[a].offset < hits[b].offset })
		offsets := make([]int, 0, len(hits))
		header := make([]string, 0, len(hits))
		prev := -1
		for _, h := range hits {
			if h.offset == prev {
				continue
			}
			prev = h.offset
			offsets = append(offsets, h.offset)
			header = append(header, h.text)
		}
		if len(offsets) >= 3 {
			return i, offsets, header
		}
	}
	return -1, nil, nil
}

func (s *alignedStrategy) startsWithRowLabel(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, label := range s.rowLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return false
}

// sliceAtOffsets cuts a line at the recorded column boundaries.
func sliceAtOffsets(line string, offsets []int) []string {
	cells := make([]string, len(offsets))
	runes := []rune(line)
	for i, start := range offsets {
		end := len(runes)
		if i+1 < len(offsets) && offsets[i+1] < end {
			end = offsets[i+1]
		}
		if start >= len(runes) {
			cells[i] = ""
			continue
		}
		cells[i] = strings.TrimSpace(string(runes[start:end]))
	}
	return cells
}

// looksDelimited reports whether a line matches the delimiter+quote pattern.
func looksDelimited(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	commas := countUnquotedCommas(trimmed)
	if commas >= 2 {
		return true
	}
	return commas >= 1 && strings.Contains(trimmed, `"`)
}

// splitDelimited splits a comma-delimited line, honoring double quotes.
func splitDelimited(line string) []string {
	var cells []string
	var cur strings.Builder
	inQuote := false
	for _, r := range strings.TrimSpace(line) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

func countUnquotedCommas(line string) int {
	n := 0
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			n++
		}
	}
	return n
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func firstN(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
