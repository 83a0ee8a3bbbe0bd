package ingest

import (
	"sort"
	"strings"

	"github.com/finvault-ai/semindex/internal/storage"
)

// TablePiece is one retrievable unit produced from a table. A comparison
// table spanning N product variants must not be retrievable only under a
// combined label, so each detected sub-category yields its own piece.
type TablePiece struct {
	Table       *Table
	Category    storage.Category
	SubCategory storage.SubCategory
	// FullTable marks the ambiguous-mapping fallback: the piece carries the
	// entire table and the consumer extracts the relevant column itself.
	FullTable bool
}

// SplitTable determines whether a table's columns correspond to multiple
// sub-categories of the base category and splits it accordingly:
//
//   - unambiguous column mapping: one two-column (feature, value) projection
//     per sub-category;
//   - ambiguous mapping: the entire table once per detected sub-category,
//     flagged FullTable;
//   - no sub-category detected: a single piece tagged with the base category.
func SplitTable(t *Table, base storage.Category, norm *Normalizer) []TablePiece {
	if t == nil {
		return nil
	}

	keywords := norm.SubCategoryKeywords(base)
	if len(keywords) == 0 {
		return []TablePiece{{Table: t, Category: base}}
	}

	// Map header columns to sub-categories.
	byCol := make(map[int]storage.SubCategory)
	found := make(map[storage.SubCategory]struct{})
	ambiguous := false

	for col, cell := range t.Header {
		lower := strings.ToLower(cell)
		cellSubs := make(map[storage.SubCategory]struct{})
		for kw, sub := range keywords {
			if strings.Contains(lower, kw) {
				cellSubs[sub] = struct{}{}
			}
		}
		subsInCell := sortedSubs(cellSubs)
		if len(subsInCell) > 1 {
			// One header cell naming several variants cannot be sliced.
			ambiguous = true
		}
		for _, s := range subsInCell {
			found[s] = struct{}{}
		}
		if len(subsInCell) == 1 {
			if _, taken := byCol[col]; taken {
				ambiguous = true
			}
			byCol[col] = subsInCell[0]
		}
	}

	// Header may not name the variants at all even though the section text
	// does (co-occurrence detection). Scan the whole rendered table then.
	if len(found) == 0 {
		rendered := strings.ToLower(t.Render())
		for kw, sub := range keywords {
			if strings.Contains(rendered, kw) {
				found[sub] = struct{}{}
			}
		}
		if len(found) > 0 {
			ambiguous = true
		}
	}

	if len(found) == 0 {
		return []TablePiece{{Table: t, Category: base}}
	}

	subs := sortedSubs(found)

	if ambiguous || len(byCol) != len(found) {
		// Cannot align headers to content columns: emit the full table once
		// per detected sub-category so each stays independently retrievable.
		pieces := make([]TablePiece, 0, len(subs))
		for _, sub := range subs {
			pieces = append(pieces, TablePiece{
				Table:       t,
				Category:    base,
				SubCategory: sub,
				FullTable:   true,
			})
		}
		return pieces
	}

	// Unambiguous: project (feature, value-for-that-sub-category) per column.
	cols := make([]int, 0, len(byCol))
	for col := range byCol {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	featureCol := firstUnmappedCol(t.Header, byCol)
	featureHeader := "Feature"
	if featureCol >= 0 {
		featureHeader = t.Header[featureCol]
	} else {
		featureCol = 0
	}

	pieces := make([]TablePiece, 0, len(cols))
	for _, col := range cols {
		proj := &Table{Header: []string{featureHeader, t.Header[col]}}
		for _, row := range t.Rows {
			feature := cellAt(row, featureCol)
			value := cellAt(row, col)
			proj.Rows = append(proj.Rows, []string{feature, value})
		}
		pieces = append(pieces, TablePiece{
			Table:       proj,
			Category:    base,
			SubCategory: byCol[col],
		})
	}
	return pieces
}

// firstUnmappedCol returns the leftmost header column not claimed by a
// sub-category; that column holds the feature labels.
func firstUnmappedCol(header []string, byCol map[int]storage.SubCategory) int {
	for col := range header {
		if _, mapped := byCol[col]; !mapped {
			return col
		}
	}
	return -1
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func sortedSubs(set map[storage.SubCategory]struct{}) []storage.SubCategory {
	subs := make([]storage.SubCategory, 0, len(set))
	for s := range set {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	return subs
}
