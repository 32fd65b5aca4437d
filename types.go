package queryfarmer

// Category names a class of protected substrings.
type Category string

const (
	// CategoryPlaceholder matches template placeholders such as {{name}}.
	CategoryPlaceholder Category = "placeholders"
	// CategoryMarkdown matches **bold** and *italic* emphasis.
	CategoryMarkdown Category = "markdown"
	// CategoryCode matches inline <code>...</code> spans.
	CategoryCode Category = "code"
	// CategoryURL matches http and https URLs.
	CategoryURL Category = "urls"
	// CategoryNumber matches integer and decimal literals.
	CategoryNumber Category = "numbers"
)

// Categories lists the built-in categories in priority order.
var Categories = []Category{
	CategoryPlaceholder,
	CategoryMarkdown,
	CategoryCode,
	CategoryURL,
	CategoryNumber,
}

var markerNames = map[Category]string{
	CategoryPlaceholder: "PLACEHOLDER",
	CategoryMarkdown:    "MARKDOWN",
	CategoryCode:        "CODE",
	CategoryURL:         "URL",
	CategoryNumber:      "NUMBER",
}

// TokenSet maps each category to the literals found in the source text,
// in first-occurrence order with duplicates kept.
type TokenSet map[Category][]string

// Len returns the total number of literals across all categories.
func (ts TokenSet) Len() int {
	n := 0
	for _, literals := range ts {
		n += len(literals)
	}
	return n
}

// Request is a single translation request.
type Request struct {
	Text           string
	SourceLang     string
	TargetLang     string
	PreserveTokens bool
}

// TranslationResult is the outcome of a translation. Values are shared
// between the cache and callers and must not be modified.
type TranslationResult struct {
	TranslatedText string   `json:"translated_text"`
	Confidence     float64  `json:"confidence"`
	Tokens         TokenSet `json:"preserved_tokens"`
	SourceLang     string   `json:"source_lang"`
	TargetLang     string   `json:"target_lang"`
	Fallback       bool     `json:"fallback,omitempty"` // Provider failed; text is a placeholder
}

// ProviderRequest is what an external provider receives. Text may contain
// shielding markers that must be returned untouched.
type ProviderRequest struct {
	Text       string
	SourceLang string
	TargetLang string
}

// ProviderResponse is what an external provider returns.
type ProviderResponse struct {
	Text       string
	Confidence float64
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
