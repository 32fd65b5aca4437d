package provider

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// mockDictionaries holds word replacements keyed by source language; every
// dictionary translates to English.
var mockDictionaries = map[string]map[string]string{
	"hi": {
		"नमस्ते": "Hello",
		"कैसे":   "How",
		"हैं":    "are",
		"आप":     "you",
		"मैं":    "I",
		"हूं":    "am",
		"किसान":  "farmer",
		"फसल":    "crop",
		"कीट":    "pest",
		"रोग":    "disease",
		"मेरी":   "my",
		"गेहूं":  "wheat",
		"में":    "in",
		"पीले":   "yellow",
		"रंग":    "color",
		"के":     "of",
		"धब्बे":  "spots",
		"दिख":    "showing",
		"रहे":    "appearing",
		"क्या":   "what",
		"यह":     "this",
	},
	"gu": {
		"નમસ્તે": "Hello",
		"કેમ":    "How",
		"છો":     "are",
		"તમે":    "you",
		"હું":    "I",
		"છું":    "am",
		"ખેડૂત":  "farmer",
		"પાક":    "crop",
		"કીટક":   "pest",
		"રોગ":    "disease",
	},
	"mr": {
		"नमस्कार": "Hello",
		"कसे":     "How",
		"आहात":    "are",
		"तुम्ही":  "you",
		"मी":      "I",
		"आहो":     "am",
		"शेतकरी":  "farmer",
		"पीक":     "crop",
		"कीटक":    "pest",
		"रोग":     "disease",
	},
	"bn": {
		"নমস্কার":  "Hello",
		"কেমন":     "How",
		"আছেন":     "are",
		"আপনি":     "you",
		"আমি":      "I",
		"আছি":      "am",
		"কৃষক":     "farmer",
		"ফসল":      "crop",
		"কীটপতঙ্গ": "pest",
		"রোগ":      "disease",
	},
}

// mockReplacers are built once; longer words are listed first so they win
// over words they contain.
var mockReplacers = func() map[string]*strings.Replacer {
	out := make(map[string]*strings.Replacer, len(mockDictionaries))
	for lang, dict := range mockDictionaries {
		words := make([]string, 0, len(dict))
		for w := range dict {
			words = append(words, w)
		}
		sort.Slice(words, func(i, j int) bool {
			if len(words[i]) != len(words[j]) {
				return len(words[i]) > len(words[j])
			}
			return words[i] < words[j]
		})
		pairs := make([]string, 0, 2*len(words))
		for _, w := range words {
			pairs = append(pairs, w, dict[w])
		}
		out[lang] = strings.NewReplacer(pairs...)
	}
	return out
}()

// MockProvider translates with small built-in dictionaries. It needs no
// credentials and is safe for concurrent use.
type MockProvider struct {
	mu    sync.Mutex
	calls int
	last  *Request

	Err   error         // Returned by Translate when set
	Delay time.Duration // Simulated latency, cut short by ctx
}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	return NameMock
}

// Translate replaces known words for hi, gu, mr and bn into English with
// confidence 0.8. Other pairs are tagged with the target code at 0.5.
func (m *MockProvider) Translate(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.calls++
	m.last = &req
	delay, failure := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	if failure != nil {
		return Response{}, failure
	}

	if r, ok := mockReplacers[req.SourceLang]; ok && req.TargetLang == "en" {
		return Response{Text: r.Replace(req.Text), Confidence: 0.8}, nil
	}
	return Response{Text: "[" + strings.ToUpper(req.TargetLang) + "] " + req.Text, Confidence: 0.5}, nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.last = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
