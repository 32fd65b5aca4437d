package queryfarmer

import (
	"sort"
	"strings"
)

// DefaultLanguages maps the supported language codes to their names.
var DefaultLanguages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"gu": "Gujarati",
	"mr": "Marathi",
	"bn": "Bengali",
}

// DefaultPairs lists the legal source -> target directions.
var DefaultPairs = map[string][]string{
	"hi": {"en"},
	"gu": {"en"},
	"mr": {"en"},
	"bn": {"en"},
	"en": {"hi", "gu", "mr", "bn"},
}

// RTLLanguages contains base codes of right-to-left scripts.
var RTLLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"ps": true,
	"sd": true,
	"yi": true,
}

// LanguageSet is the immutable set of supported languages and, optionally,
// the legal translation directions between them.
type LanguageSet struct {
	names map[string]string
	pairs map[string]map[string]bool
}

// NewLanguageSet builds a set from code -> name and source -> targets maps.
// With no pairs any two supported languages form a legal pair.
func NewLanguageSet(names map[string]string, pairs map[string][]string) *LanguageSet {
	ls := &LanguageSet{
		names: make(map[string]string, len(names)),
		pairs: make(map[string]map[string]bool, len(pairs)),
	}
	for code, name := range names {
		ls.names[normalizeCode(code)] = name
	}
	for src, targets := range pairs {
		set := make(map[string]bool, len(targets))
		for _, tgt := range targets {
			set[normalizeCode(tgt)] = true
		}
		ls.pairs[normalizeCode(src)] = set
	}
	return ls
}

// DefaultLanguageSet returns the built-in languages and pairs.
func DefaultLanguageSet() *LanguageSet {
	return NewLanguageSet(DefaultLanguages, DefaultPairs)
}

// Supports reports whether code is a supported language.
func (ls *LanguageSet) Supports(code string) bool {
	_, ok := ls.names[normalizeCode(code)]
	return ok
}

// Validate checks that both codes are supported and form a legal pair.
func (ls *LanguageSet) Validate(sourceLang, targetLang string) error {
	if !ls.Supports(sourceLang) {
		return &UnsupportedLanguageError{Role: "source", Code: sourceLang}
	}
	if !ls.Supports(targetLang) {
		return &UnsupportedLanguageError{Role: "target", Code: targetLang}
	}
	if len(ls.pairs) == 0 {
		return nil
	}
	if !ls.pairs[normalizeCode(sourceLang)][normalizeCode(targetLang)] {
		return &UnsupportedLanguageError{Role: "pair", Code: sourceLang + "->" + targetLang}
	}
	return nil
}

// Codes returns the supported codes in sorted order.
func (ls *LanguageSet) Codes() []string {
	codes := make([]string, 0, len(ls.names))
	for code := range ls.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Names returns a copy of the code -> name map.
func (ls *LanguageSet) Names() map[string]string {
	out := make(map[string]string, len(ls.names))
	for code, name := range ls.names {
		out[code] = name
	}
	return out
}

// Pairs returns a copy of the legal directions with sorted targets. With no
// configured pairs every supported language maps to all the others.
func (ls *LanguageSet) Pairs() map[string][]string {
	if len(ls.pairs) == 0 {
		codes := ls.Codes()
		out := make(map[string][]string, len(codes))
		for _, src := range codes {
			list := make([]string, 0, len(codes)-1)
			for _, tgt := range codes {
				if tgt != src {
					list = append(list, tgt)
				}
			}
			out[src] = list
		}
		return out
	}

	out := make(map[string][]string, len(ls.pairs))
	for src, targets := range ls.pairs {
		list := make([]string, 0, len(targets))
		for tgt := range targets {
			list = append(list, tgt)
		}
		sort.Strings(list)
		out[src] = list
	}
	return out
}

// Name returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func (ls *LanguageSet) Name(code string) string {
	if name, ok := ls.names[normalizeCode(code)]; ok {
		return name
	}
	return code
}

// Direction returns "rtl" for right-to-left languages, "ltr" otherwise.
func Direction(code string) string {
	if RTLLanguages[normalizeCode(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return Direction(code) == "rtl"
}

// normalizeCode extracts the lower-case base code (e.g., "hi" from "hi_IN" or "hi-IN").
func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "_-"); i >= 0 {
		code = code[:i]
	}
	return code
}
