package queryfarmer

import (
	"errors"
	"reflect"
	"testing"
)

func TestLanguageSet_Validate(t *testing.T) {
	ls := DefaultLanguageSet()

	tests := []struct {
		name     string
		src, tgt string
		role     string // empty when valid
	}{
		{"hindi to english", "hi", "en", ""},
		{"english to bengali", "en", "bn", ""},
		{"regional locale", "hi_IN", "en", ""},
		{"unknown source", "xx", "en", "source"},
		{"unknown target", "en", "xx", "target"},
		{"illegal pair", "hi", "gu", "pair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ls.Validate(tt.src, tt.tgt)
			if tt.role == "" {
				if err != nil {
					t.Errorf("Validate(%q, %q) = %v, want nil", tt.src, tt.tgt, err)
				}
				return
			}

			var langErr *UnsupportedLanguageError
			if !errors.As(err, &langErr) {
				t.Fatalf("Validate(%q, %q) = %v, want *UnsupportedLanguageError", tt.src, tt.tgt, err)
			}
			if langErr.Role != tt.role {
				t.Errorf("Role = %q, want %q", langErr.Role, tt.role)
			}
		})
	}
}

func TestLanguageSet_NoPairsAllowsAny(t *testing.T) {
	ls := NewLanguageSet(map[string]string{"en": "English", "fr": "French", "de": "German"}, nil)

	if err := ls.Validate("fr", "de"); err != nil {
		t.Errorf("Expected any pair to be legal, got %v", err)
	}

	want := map[string][]string{
		"de": {"en", "fr"},
		"en": {"de", "fr"},
		"fr": {"de", "en"},
	}
	if got := ls.Pairs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Pairs() = %v, want %v", got, want)
	}
}

func TestLanguageSet_Codes(t *testing.T) {
	got := DefaultLanguageSet().Codes()
	want := []string{"bn", "en", "gu", "hi", "mr"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Codes() = %v, want %v", got, want)
	}
}

func TestLanguageSet_Pairs(t *testing.T) {
	pairs := DefaultLanguageSet().Pairs()

	if got := pairs["en"]; !reflect.DeepEqual(got, []string{"bn", "gu", "hi", "mr"}) {
		t.Errorf("Pairs()[en] = %v", got)
	}
	if got := pairs["gu"]; !reflect.DeepEqual(got, []string{"en"}) {
		t.Errorf("Pairs()[gu] = %v", got)
	}
}

func TestLanguageSet_Name(t *testing.T) {
	ls := DefaultLanguageSet()

	tests := []struct {
		code     string
		expected string
	}{
		{"hi", "Hindi"},
		{"GU", "Gujarati"},
		{"mr-IN", "Marathi"},
		{"unknown", "unknown"}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ls.Name(tt.code); got != tt.expected {
				t.Errorf("Name(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ar_SA", "rtl"},
		{"he-IL", "rtl"},
		{"ur", "rtl"},
		{"hi", "ltr"},
		{"en_US", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := Direction(tt.code); got != tt.expected {
				t.Errorf("Direction(%q) = %q, want %q", tt.code, got, tt.expected)
			}
			if IsRTL(tt.code) != (tt.expected == "rtl") {
				t.Errorf("IsRTL(%q) inconsistent with Direction", tt.code)
			}
		})
	}
}
