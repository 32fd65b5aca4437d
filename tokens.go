package queryfarmer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Matcher is one extraction stage of a TokenPreserver.
type Matcher struct {
	Category Category
	Pattern  *regexp.Regexp
}

// DefaultMatchers returns the built-in stages in priority order:
// placeholder, markdown, code, url, number.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Category: CategoryPlaceholder, Pattern: regexp.MustCompile(`\{\{[^}]+\}\}`)},
		{Category: CategoryMarkdown, Pattern: regexp.MustCompile(`\*\*[^*]+\*\*|\*[^*]+\*`)},
		{Category: CategoryCode, Pattern: regexp.MustCompile(`<code>[^<]+</code>`)},
		{Category: CategoryURL, Pattern: regexp.MustCompile(`https?://[^\s]+`)},
		{Category: CategoryNumber, Pattern: regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)},
	}
}

// Span is a protected substring located in the source text.
type Span struct {
	Category Category
	Start    int // Byte offset of the first byte
	End      int // Byte offset one past the last byte
	Literal  string
}

// TokenPreserver shields structural substrings from translation and
// restores them afterwards. It holds no mutable state and is safe for
// concurrent use.
type TokenPreserver struct {
	matchers []Matcher
}

// NewTokenPreserver creates a preserver running the given stages in order.
// With no stages it uses DefaultMatchers.
func NewTokenPreserver(matchers ...Matcher) *TokenPreserver {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &TokenPreserver{matchers: matchers}
}

// Marker returns the opaque marker for the i-th literal of a category.
func Marker(c Category, i int) string {
	return "__" + MarkerName(c) + "_" + strconv.Itoa(i) + "__"
}

// MarkerName returns the upper-case name used inside markers.
func MarkerName(c Category) string {
	if name, ok := markerNames[c]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSuffix(string(c), "s"))
}

// Spans runs every stage over the unmodified text and returns the claimed
// spans ordered by offset. A match that overlaps a span already claimed by
// an earlier stage is dropped whole, so digits inside a URL are never
// reported as numbers.
func (p *TokenPreserver) Spans(text string) []Span {
	var claimed []Span
	for _, m := range p.matchers {
		var stage []Span
		for _, loc := range m.Pattern.FindAllStringIndex(text, -1) {
			if overlapsAny(claimed, loc[0], loc[1]) {
				continue
			}
			stage = append(stage, Span{
				Category: m.Category,
				Start:    loc[0],
				End:      loc[1],
				Literal:  text[loc[0]:loc[1]],
			})
		}
		claimed = append(claimed, stage...)
	}

	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].Start < claimed[j].Start
	})
	return claimed
}

// Extract returns the protected literals of text grouped by category.
// Every category of the preserver is present, possibly empty.
func (p *TokenPreserver) Extract(text string) TokenSet {
	return p.collect(p.Spans(text))
}

// Shield replaces every protected span of text with the marker of the first
// index its literal has in tokens. Repeated literals share one marker.
// Spans whose literal is not in tokens are left untouched.
func (p *TokenPreserver) Shield(text string, tokens TokenSet) string {
	return shield(text, p.Spans(text), tokens)
}

// Protect extracts and shields text in one pass.
func (p *TokenPreserver) Protect(text string) (string, TokenSet) {
	spans := p.Spans(text)
	tokens := p.collect(spans)
	return shield(text, spans, tokens), tokens
}

// Restore replaces every marker known to tokens with its literal. Markers
// that were dropped or mangled in translation stay as they are.
func (p *TokenPreserver) Restore(text string, tokens TokenSet) string {
	pairs := make([]string, 0, 2*tokens.Len())
	for _, c := range p.categories(tokens) {
		for i, literal := range tokens[c] {
			pairs = append(pairs, Marker(c, i), literal)
		}
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Categories returns the preserver's categories in priority order.
func (p *TokenPreserver) Categories() []Category {
	out := make([]Category, len(p.matchers))
	for i, m := range p.matchers {
		out[i] = m.Category
	}
	return out
}

// categories returns the preserver's order followed by any extra
// categories present in tokens.
func (p *TokenPreserver) categories(tokens TokenSet) []Category {
	order := p.Categories()
	known := make(map[Category]bool, len(order))
	for _, c := range order {
		known[c] = true
	}

	var extra []Category
	for c := range tokens {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

func (p *TokenPreserver) collect(spans []Span) TokenSet {
	tokens := make(TokenSet, len(p.matchers))
	for _, m := range p.matchers {
		tokens[m.Category] = []string{}
	}
	for _, s := range spans {
		tokens[s.Category] = append(tokens[s.Category], s.Literal)
	}
	return tokens
}

func shield(text string, spans []Span, tokens TokenSet) string {
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, s := range spans {
		i := indexOf(tokens[s.Category], s.Literal)
		if i < 0 {
			continue
		}
		b.WriteString(text[prev:s.Start])
		b.WriteString(Marker(s.Category, i))
		prev = s.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

func overlapsAny(spans []Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

func indexOf(literals []string, literal string) int {
	for i, l := range literals {
		if l == literal {
			return i
		}
	}
	return -1
}
