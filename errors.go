package queryfarmer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLanguage is matched by every *UnsupportedLanguageError.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError rejects a request before any side effect.
type UnsupportedLanguageError struct {
	Role string // "source", "target" or "pair"
	Code string // Offending code; "src->tgt" for pairs
}

func (e *UnsupportedLanguageError) Error() string {
	if e.Role == "pair" {
		return fmt.Sprintf("Unsupported language pair: %s", e.Code)
	}
	return fmt.Sprintf("Unsupported %s language: %s", e.Role, e.Code)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// ProviderError indicates an external provider failure (network, quota, credentials).
type ProviderError struct {
	Provider  string
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Provider != "" {
		prefix = fmt.Sprintf("provider error (%s)", e.Provider)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache backend failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// TokenMismatchError reports protected literals lost in translation.
// It is logged, never returned to callers of Translate.
type TokenMismatchError struct {
	Missing    TokenSet
	Unresolved []string
}

func (e *TokenMismatchError) Error() string {
	var parts []string
	if n := e.Missing.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing literal(s)", n))
	}
	if len(e.Unresolved) > 0 {
		parts = append(parts, fmt.Sprintf("unresolved markers %s", strings.Join(e.Unresolved, ", ")))
	}
	return "token restoration mismatch: " + strings.Join(parts, "; ")
}
