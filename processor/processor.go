// Package processor translates structured documents through a Translator.
package processor

import (
	"context"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

// Translator is the part of *queryfarmer.Translator a processor needs.
type Translator interface {
	TranslateBatch(ctx context.Context, reqs []queryfarmer.Request, concurrency int) ([]queryfarmer.BatchResult, error)
}

// Result is the outcome of translating a document.
type Result struct {
	Content         string `json:"content"`
	TotalNodes      int    `json:"total_nodes"`      // Distinct translatable texts
	TranslatedCount int    `json:"translated_count"` // Texts translated by the provider or cache
	FallbackCount   int    `json:"fallback_count"`   // Texts that received a placeholder result
}

// Verify *queryfarmer.Translator satisfies Translator
var _ Translator = (*queryfarmer.Translator)(nil)
