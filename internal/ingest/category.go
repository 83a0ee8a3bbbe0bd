package ingest

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/finvault-ai/semindex/internal/storage"
)

// Normalizer maps free-form product names, filenames, and section text onto
// the canonical category enumeration. Lookups are pure and deterministic;
// chunk IDs depend on that.
type Normalizer struct {
	// primary keys sorted longest-first so a short alias never shadows a
	// longer, more specific name ("loan" vs "business loan").
	primaryKeys  []string
	primary      map[string]storage.Category
	subKeys      []string
	sub          map[string]subEntry
}

type subEntry struct {
	category storage.Category
	sub      storage.SubCategory
}

// NewNormalizer builds the bilingual lookup tables.
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		primary: map[string]storage.Category{
			"home loan":                      storage.CategoryHomeLoan,
			"housing loan":                   storage.CategoryHomeLoan,
			"गृह ऋण":                         storage.CategoryHomeLoan,
			"होम लोन":                        storage.CategoryHomeLoan,
			"personal loan":                  storage.CategoryPersonalLoan,
			"व्यक्तिगत ऋण":                   storage.CategoryPersonalLoan,
			"पर्सनल लोन":                     storage.CategoryPersonalLoan,
			"car loan":                       storage.CategoryCarLoan,
			"vehicle loan":                   storage.CategoryCarLoan,
			"auto loan":                      storage.CategoryCarLoan,
			"वाहन ऋण":                        storage.CategoryCarLoan,
			"कार लोन":                        storage.CategoryCarLoan,
			"two wheeler loan":               storage.CategoryTwoWheelerLoan,
			"दोपहिया ऋण":                     storage.CategoryTwoWheelerLoan,
			"education loan":                 storage.CategoryEducationLoan,
			"student loan":                   storage.CategoryEducationLoan,
			"शिक्षा ऋण":                      storage.CategoryEducationLoan,
			"gold loan":                      storage.CategoryGoldLoan,
			"स्वर्ण ऋण":                      storage.CategoryGoldLoan,
			"गोल्ड लोन":                      storage.CategoryGoldLoan,
			"business loan":                  storage.CategoryBusinessLoan,
			"msme loan":                      storage.CategoryBusinessLoan,
			"व्यवसाय ऋण":                     storage.CategoryBusinessLoan,
			"mudra loan":                     storage.CategoryMudraLoan,
			"mudra yojana":                   storage.CategoryMudraLoan,
			"pradhan mantri mudra yojana":    storage.CategoryMudraLoan,
			"मुद्रा ऋण":                      storage.CategoryMudraLoan,
			"मुद्रा योजना":                   storage.CategoryMudraLoan,
			"agriculture loan":               storage.CategoryAgriLoan,
			"agri loan":                      storage.CategoryAgriLoan,
			"crop loan":                      storage.CategoryAgriLoan,
			"kisan credit card":              storage.CategoryAgriLoan,
			"कृषि ऋण":                        storage.CategoryAgriLoan,
			"फसल ऋण":                         storage.CategoryAgriLoan,
			"public provident fund":          storage.CategoryPPF,
			"ppf":                            storage.CategoryPPF,
			"सार्वजनिक भविष्य निधि":          storage.CategoryPPF,
			"fixed deposit":                  storage.CategoryFixedDeposit,
			"term deposit":                   storage.CategoryFixedDeposit,
			"fd":                             storage.CategoryFixedDeposit,
			"सावधि जमा":                      storage.CategoryFixedDeposit,
			"recurring deposit":              storage.CategoryRecurringDep,
			"rd":                             storage.CategoryRecurringDep,
			"आवर्ती जमा":                     storage.CategoryRecurringDep,
			"sukanya samriddhi yojana":       storage.CategorySSY,
			"sukanya samriddhi":              storage.CategorySSY,
			"ssy":                            storage.CategorySSY,
			"सुकन्या समृद्धि योजना":          storage.CategorySSY,
			"national savings certificate":   storage.CategoryNSC,
			"nsc":                            storage.CategoryNSC,
			"राष्ट्रीय बचत प्रमाणपत्र":       storage.CategoryNSC,
			"senior citizen savings scheme":  storage.CategorySCSS,
			"scss":                           storage.CategorySCSS,
			"वरिष्ठ नागरिक बचत योजना":        storage.CategorySCSS,
			"kisan vikas patra":              storage.CategoryKVP,
			"kvp":                            storage.CategoryKVP,
			"किसान विकास पत्र":               storage.CategoryKVP,
		},
		sub: map[string]subEntry{
			"shishu":           {storage.CategoryMudraLoan, storage.SubMudraShishu},
			"शिशु":             {storage.CategoryMudraLoan, storage.SubMudraShishu},
			"kishor":           {storage.CategoryMudraLoan, storage.SubMudraKishor},
			"kishore":          {storage.CategoryMudraLoan, storage.SubMudraKishor},
			"किशोर":            {storage.CategoryMudraLoan, storage.SubMudraKishor},
			"tarun":            {storage.CategoryMudraLoan, storage.SubMudraTarun},
			"तरुण":             {storage.CategoryMudraLoan, storage.SubMudraTarun},
			"tax saver fd":     {storage.CategoryFixedDeposit, storage.SubFDTaxSaver},
			"tax saving fd":    {storage.CategoryFixedDeposit, storage.SubFDTaxSaver},
			"tax saver deposit": {storage.CategoryFixedDeposit, storage.SubFDTaxSaver},
			"senior citizen fd": {storage.CategoryFixedDeposit, storage.SubFDSeniorCitizen},
			"flexi rd":         {storage.CategoryRecurringDep, storage.SubRDFlexi},
			"flexi recurring":  {storage.CategoryRecurringDep, storage.SubRDFlexi},
			"top up loan":      {storage.CategoryHomeLoan, storage.SubHomeLoanTopUp},
			"top-up loan":      {storage.CategoryHomeLoan, storage.SubHomeLoanTopUp},
			"balance transfer": {storage.CategoryHomeLoan, storage.SubHomeLoanBalanceXfer},
		},
	}

	n.primaryKeys = sortedKeysByLength(n.primary)
	subKeys := make([]string, 0, len(n.sub))
	for k := range n.sub {
		subKeys = append(subKeys, k)
	}
	sort.Slice(subKeys, func(i, j int) bool {
		if len(subKeys[i]) != len(subKeys[j]) {
			return len(subKeys[i]) > len(subKeys[j])
		}
		return subKeys[i] < subKeys[j]
	})
	n.subKeys = subKeys

	return n
}

// Normalize maps a candidate label to a canonical category, consulting the
// sub-category table first. Surrounding section text, when given, refines the
// result to a more specific variant.
func (n *Normalizer) Normalize(label string, domain storage.Domain, context string) (storage.Category, storage.SubCategory) {
	cleaned := normalizeLabel(label)

	// Sub-category keywords are more specific and win over the primary table:
	// a section mentioning a scheme name like "shishu" belongs to that variant
	// even inside a generic business-loan document.
	for _, probe := range []string{cleaned, normalizeLabel(context)} {
		if probe == "" {
			continue
		}
		for _, key := range n.subKeys {
			if strings.Contains(probe, key) {
				e := n.sub[key]
				return e.category, e.sub
			}
		}
	}

	if cat, ok := n.lookupPrimary(cleaned); ok {
		return cat, storage.SubCategoryNone
	}

	// Filename-derived labels often carry suffixes like "_details.txt".
	if retry := stripFilenameNoise(cleaned); retry != cleaned {
		if cat, ok := n.lookupPrimary(retry); ok {
			return cat, storage.SubCategoryNone
		}
	}

	if ctx := normalizeLabel(context); ctx != "" {
		if cat, ok := n.lookupPrimary(ctx); ok {
			return cat, storage.SubCategoryNone
		}
	}

	return storage.UnknownFor(domain), storage.SubCategoryNone
}

// NormalizeFilename derives a category from a document filename.
func (n *Normalizer) NormalizeFilename(name string, domain storage.Domain) (storage.Category, storage.SubCategory) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return n.Normalize(base, domain, "")
}

// SubCategoryKeywords returns the lookup keywords whose sub-categories belong
// to the given base category. The table splitter matches header cells against
// these.
func (n *Normalizer) SubCategoryKeywords(base storage.Category) map[string]storage.SubCategory {
	out := make(map[string]storage.SubCategory)
	for k, e := range n.sub {
		if e.category == base {
			out[k] = e.sub
		}
	}
	return out
}

func (n *Normalizer) lookupPrimary(label string) (storage.Category, bool) {
	if label == "" {
		return "", false
	}
	if cat, ok := n.primary[label]; ok {
		return cat, true
	}
	for _, key := range n.primaryKeys {
		if len(key) <= 4 {
			// Short aliases (fd, rd, ppf) only match as whole words, never
			// inside words like "standard".
			if containsWord(label, key) {
				return n.primary[key], true
			}
			continue
		}
		if strings.Contains(label, key) {
			return n.primary[key], true
		}
	}
	return "", false
}

func containsWord(label, word string) bool {
	for _, tok := range strings.Fields(label) {
		if tok == word {
			return true
		}
	}
	return false
}

var separatorRe = regexp.MustCompile(`[_\-./]+`)
var spaceRe = regexp.MustCompile(`\s+`)

// normalizeLabel lower-cases and collapses separators and whitespace.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = separatorRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var filenameNoise = map[string]struct{}{
	"details": {}, "brochure": {}, "document": {}, "doc": {}, "scheme": {},
	"final": {}, "v1": {}, "v2": {}, "new": {}, "updated": {}, "eng": {}, "hindi": {},
}

// stripFilenameNoise drops leading/trailing tokens that are filename
// conventions rather than product names.
func stripFilenameNoise(label string) string {
	tokens := strings.Fields(label)
	for len(tokens) > 0 {
		if _, ok := filenameNoise[tokens[len(tokens)-1]]; ok {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	for len(tokens) > 0 {
		if _, ok := filenameNoise[tokens[0]]; ok {
			tokens = tokens[1:]
			continue
		}
		break
	}
	return strings.Join(tokens, " ")
}

func sortedKeysByLength(m map[string]storage.Category) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
