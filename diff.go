package queryfarmer

import (
	"regexp"
	"strings"
)

// markerPattern matches any shielding marker, known or not.
var markerPattern = regexp.MustCompile(`__[A-Z]+_\d+__`)

// TokenDiff describes how a restored translation differs from the tokens
// that were shielded before translation.
type TokenDiff struct {
	// Missing contains literals that do not appear in the restored text.
	Missing TokenSet

	// Unresolved contains marker strings still present after restoration,
	// typically because the provider mangled or invented them.
	Unresolved []string
}

// HasChanges returns true if any literal went missing or any marker survived.
func (d *TokenDiff) HasChanges() bool {
	return d.Missing.Len() > 0 || len(d.Unresolved) > 0
}

// Err returns a *TokenMismatchError when the diff has changes, nil otherwise.
func (d *TokenDiff) Err() error {
	if !d.HasChanges() {
		return nil
	}
	return &TokenMismatchError{Missing: d.Missing, Unresolved: d.Unresolved}
}

// Verify compares the shielded tokens against a restored translation.
// Each distinct literal is checked once.
func Verify(tokens TokenSet, restored string) *TokenDiff {
	diff := &TokenDiff{Missing: TokenSet{}}

	for category, literals := range tokens {
		seen := make(map[string]bool, len(literals))
		for _, literal := range literals {
			if seen[literal] {
				continue
			}
			seen[literal] = true
			if !strings.Contains(restored, literal) {
				diff.Missing[category] = append(diff.Missing[category], literal)
			}
		}
	}

	diff.Unresolved = markerPattern.FindAllString(restored, -1)
	return diff
}
