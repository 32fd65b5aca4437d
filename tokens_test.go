package queryfarmer

import (
	"reflect"
	"strings"
	"testing"
)

func TestProtect_SpecExample(t *testing.T) {
	p := NewTokenPreserver()
	text := "Hello {{name}}, visit http://x.co now, you owe 42.5"

	shielded, tokens := p.Protect(text)

	want := "Hello __PLACEHOLDER_0__, visit __URL_0__ now, you owe __NUMBER_0__"
	if shielded != want {
		t.Errorf("Protect() = %q, want %q", shielded, want)
	}
	if tokens.Len() != 3 {
		t.Errorf("Expected 3 tokens, got %d: %v", tokens.Len(), tokens)
	}
	if got := p.Restore(shielded, tokens); got != text {
		t.Errorf("Restore() = %q, want %q", got, text)
	}
}

func TestExtract_Categories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want TokenSet
	}{
		{
			name: "placeholder",
			text: "Dear {{first_name}} {{last_name}}",
			want: TokenSet{CategoryPlaceholder: {"{{first_name}}", "{{last_name}}"}},
		},
		{
			name: "markdown bold and italic",
			text: "This is **very** *important*",
			want: TokenSet{CategoryMarkdown: {"**very**", "*important*"}},
		},
		{
			name: "inline code",
			text: "Run <code>make build</code> first",
			want: TokenSet{CategoryCode: {"<code>make build</code>"}},
		},
		{
			name: "urls",
			text: "See https://example.com/docs and http://a.b",
			want: TokenSet{CategoryURL: {"https://example.com/docs", "http://a.b"}},
		},
		{
			name: "numbers",
			text: "Buy 3 apples for 4.50 each",
			want: TokenSet{CategoryNumber: {"3", "4.50"}},
		},
		{
			name: "digits inside url are not numbers",
			text: "Open https://example.com/page/42 in 7 days",
			want: TokenSet{
				CategoryURL:    {"https://example.com/page/42"},
				CategoryNumber: {"7"},
			},
		},
		{
			name: "digits inside placeholder are not numbers",
			text: "Total {{ 3 }} items",
			want: TokenSet{CategoryPlaceholder: {"{{ 3 }}"}},
		},
		{
			name: "digits inside code are not numbers",
			text: "Set <code>x = 10</code> then 20",
			want: TokenSet{
				CategoryCode:   {"<code>x = 10</code>"},
				CategoryNumber: {"20"},
			},
		},
		{
			name: "duplicates retained",
			text: "5 and 5 and 6",
			want: TokenSet{CategoryNumber: {"5", "5", "6"}},
		},
		{
			name: "nothing to protect",
			text: "plain words only",
			want: TokenSet{},
		},
	}

	p := NewTokenPreserver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Extract(tt.text)
			for _, c := range Categories {
				want := tt.want[c]
				if want == nil {
					want = []string{}
				}
				if !reflect.DeepEqual(got[c], want) {
					t.Errorf("Extract(%q)[%s] = %v, want %v", tt.text, c, got[c], want)
				}
			}
		})
	}
}

func TestExtract_AllCategoriesPresent(t *testing.T) {
	tokens := NewTokenPreserver().Extract("")
	for _, c := range Categories {
		literals, ok := tokens[c]
		if !ok {
			t.Errorf("Expected category %s to be present", c)
		}
		if literals == nil || len(literals) != 0 {
			t.Errorf("Expected empty slice for %s, got %v", c, literals)
		}
	}
}

func TestShield_RepeatedLiteralSharesMarker(t *testing.T) {
	p := NewTokenPreserver()
	text := "Pay 5 now and 5 later, then 6"
	tokens := p.Extract(text)

	shielded := p.Shield(text, tokens)

	want := "Pay __NUMBER_0__ now and __NUMBER_0__ later, then __NUMBER_2__"
	if shielded != want {
		t.Errorf("Shield() = %q, want %q", shielded, want)
	}
	if got := p.Restore(shielded, tokens); got != text {
		t.Errorf("Restore() = %q, want %q", got, text)
	}
}

func TestShield_MatchesProtect(t *testing.T) {
	p := NewTokenPreserver()
	text := "**Hi** {{user}}, see <code>ls -la</code> at https://x.io/1 for 2 tips"

	shielded, tokens := p.Protect(text)
	if got := p.Shield(text, p.Extract(text)); got != shielded {
		t.Errorf("Shield(Extract()) = %q, Protect() = %q", got, shielded)
	}
	if !reflect.DeepEqual(tokens, p.Extract(text)) {
		t.Errorf("Protect tokens differ from Extract")
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"no tokens at all",
		"Hello {{name}}, visit http://x.co now, you owe 42.5",
		"**bold** *italic* <code>a < b</code> 1 2 3",
		"{{a}}{{b}}{{a}}",
		"Repeated https://a.io https://a.io and 10 10.5 10",
		"Unicode नमस्ते {{नाम}} 12 ₹",
		"Tricky *star without close and 3.",
		"URL at end http://example.com/path?q=1&r=2",
	}

	p := NewTokenPreserver()
	for _, text := range texts {
		shielded, tokens := p.Protect(text)
		if got := p.Restore(shielded, tokens); got != text {
			t.Errorf("round trip of %q produced %q (shielded %q)", text, got, shielded)
		}
	}
}

func TestRestore_UnknownMarkerLeftIntact(t *testing.T) {
	p := NewTokenPreserver()
	tokens := TokenSet{CategoryURL: {"http://x.co"}}

	got := p.Restore("go to __URL_0__ or __URL_5__", tokens)

	want := "go to http://x.co or __URL_5__"
	if got != want {
		t.Errorf("Restore() = %q, want %q", got, want)
	}
}

func TestRestore_DroppedMarker(t *testing.T) {
	p := NewTokenPreserver()
	_, tokens := p.Protect("Hello {{name}}")

	got := p.Restore("Bonjour", tokens)
	if got != "Bonjour" {
		t.Errorf("Restore() = %q, want %q", got, "Bonjour")
	}
}

func TestRestore_MarkerIndexTenNotConfusedWithOne(t *testing.T) {
	p := NewTokenPreserver()
	var parts []string
	for i := 0; i <= 11; i++ {
		parts = append(parts, "{{v"+strings.Repeat("x", i)+"}}")
	}
	text := strings.Join(parts, " ")

	shielded, tokens := p.Protect(text)
	if !strings.Contains(shielded, "__PLACEHOLDER_11__") {
		t.Fatalf("Expected marker 11 in %q", shielded)
	}
	if got := p.Restore(shielded, tokens); got != text {
		t.Errorf("Restore() = %q, want %q", got, text)
	}
}

func TestSpans_SortedByOffset(t *testing.T) {
	spans := NewTokenPreserver().Spans("7 {{x}} http://a.b 8")

	if len(spans) != 4 {
		t.Fatalf("Expected 4 spans, got %d: %+v", len(spans), spans)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			t.Errorf("Spans out of order or overlapping: %+v", spans)
		}
	}
	if spans[0].Category != CategoryNumber || spans[1].Category != CategoryPlaceholder {
		t.Errorf("Unexpected categories: %+v", spans)
	}
}

func TestNewTokenPreserver_CustomMatchers(t *testing.T) {
	matchers := DefaultMatchers()[3:] // url, number
	p := NewTokenPreserver(matchers...)

	shielded, tokens := p.Protect("{{x}} 4")

	if shielded != "{{x}} __NUMBER_0__" {
		t.Errorf("Protect() = %q", shielded)
	}
	if _, ok := tokens[CategoryPlaceholder]; ok {
		t.Error("Expected no placeholder category for custom preserver")
	}
}

func TestMarker(t *testing.T) {
	tests := []struct {
		category Category
		index    int
		want     string
	}{
		{CategoryPlaceholder, 0, "__PLACEHOLDER_0__"},
		{CategoryMarkdown, 1, "__MARKDOWN_1__"},
		{CategoryCode, 2, "__CODE_2__"},
		{CategoryURL, 3, "__URL_3__"},
		{CategoryNumber, 10, "__NUMBER_10__"},
		{Category("emails"), 0, "__EMAIL_0__"},
	}

	for _, tt := range tests {
		if got := Marker(tt.category, tt.index); got != tt.want {
			t.Errorf("Marker(%s, %d) = %q, want %q", tt.category, tt.index, got, tt.want)
		}
	}
}
