package queryfarmer

import (
	"errors"
	"testing"
)

func TestVerify_Clean(t *testing.T) {
	tokens := TokenSet{
		CategoryPlaceholder: {"{{name}}"},
		CategoryNumber:      {"5", "5"},
	}

	diff := Verify(tokens, "Namaste {{name}}, 5 and 5")

	if diff.HasChanges() {
		t.Errorf("Expected no changes, got %+v", diff)
	}
	if diff.Err() != nil {
		t.Errorf("Expected nil error, got %v", diff.Err())
	}
}

func TestVerify_MissingLiteral(t *testing.T) {
	tokens := TokenSet{
		CategoryURL:    {"http://x.co"},
		CategoryNumber: {"3", "3"},
	}

	diff := Verify(tokens, "visit the site, 3 times")

	if got := diff.Missing[CategoryURL]; len(got) != 1 || got[0] != "http://x.co" {
		t.Errorf("Expected missing url, got %v", got)
	}
	if _, ok := diff.Missing[CategoryNumber]; ok {
		t.Errorf("Did not expect missing numbers, got %v", diff.Missing[CategoryNumber])
	}
}

func TestVerify_UnresolvedMarkers(t *testing.T) {
	tokens := TokenSet{CategoryURL: {"http://x.co"}}

	diff := Verify(tokens, "visit __URL_0__ and __NUMBER_3__")

	if len(diff.Unresolved) != 2 {
		t.Fatalf("Expected 2 unresolved markers, got %v", diff.Unresolved)
	}

	var mismatch *TokenMismatchError
	if !errors.As(diff.Err(), &mismatch) {
		t.Fatalf("Expected *TokenMismatchError, got %T", diff.Err())
	}
	if mismatch.Missing.Len() != 1 {
		t.Errorf("Expected 1 missing literal, got %d", mismatch.Missing.Len())
	}
}

func TestVerify_EmptyTokens(t *testing.T) {
	if Verify(TokenSet{}, "anything").HasChanges() {
		t.Error("Expected no changes for empty token set")
	}
	if Verify(nil, "anything").HasChanges() {
		t.Error("Expected no changes for nil token set")
	}
}
