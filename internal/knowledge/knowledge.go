// Package knowledge holds the curated legal provision corpus and the
// keyword retrieval used to ground notice drafting. Retrieval is
// deterministic for a fixed corpus: same query, same ranked result.
package knowledge

import (
	"sort"
	"strings"
)

// Provision is one curated legal reference.
type Provision struct {
	ID        string   `json:"id"`
	Keywords  []string `json:"-"`
	LawName   string   `json:"law_name"`
	Section   string   `json:"section"`
	Summary   string   `json:"summary"`
	SourceURL string   `json:"source_url"`
}

// Corpus is a searchable set of provisions.
type Corpus struct {
	provisions []Provision
}

const topK = 3

// NewCorpus builds a corpus over the given provisions. Pass nil to use
// the built-in curated set.
func NewCorpus(provisions []Provision) *Corpus {
	if provisions == nil {
		provisions = builtin
	}
	return &Corpus{provisions: provisions}
}

// Search scores every provision against the query by keyword overlap
// and returns the top 3 with a positive score, best first.
//
// Scoring: +3 when the query contains a keyword verbatim, +1 per
// partial word overlap in either direction. Words shorter than three
// runes are ignored.
func (c *Corpus) Search(query string) []Provision {
	if c == nil {
		return nil
	}
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Fields(queryLower) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}

	type scored struct {
		p     Provision
		score int
	}
	hits := make([]scored, 0, len(c.provisions))
	for _, p := range c.provisions {
		score := 0
		for _, kw := range p.Keywords {
			kwLower := strings.ToLower(kw)
			if strings.Contains(queryLower, kwLower) {
				score += 3
			}
			for _, w := range words {
				if strings.Contains(kwLower, w) || strings.Contains(w, kwLower) {
					score++
				}
			}
		}
		if score > 0 {
			hits = append(hits, scored{p: p, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]Provision, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
	}
	return out
}

// FormatContext renders retrieved provisions as the grounding block
// injected into the drafting prompt. Empty input yields an empty
// string, which the drafting engine treats as "do not draft".
func FormatContext(provisions []Provision) string {
	if len(provisions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- VERIFIED LEGAL REFERENCES (from curated knowledge base) ---\n")
	for _, p := range provisions {
		b.WriteString("- ")
		b.WriteString(p.LawName)
		b.WriteString(", ")
		b.WriteString(p.Section)
		b.WriteString(": ")
		b.WriteString(p.Summary)
		b.WriteString(" [Source: ")
		b.WriteString(p.SourceURL)
		b.WriteString("]\n")
	}
	b.WriteString("--- END REFERENCES ---\n\n")
	b.WriteString("Use these references to ground your response. Cite the specific sections when applicable.")
	return b.String()
}
