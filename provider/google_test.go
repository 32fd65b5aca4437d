package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

func TestGoogleProvider_Translate(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantText       string
		wantConfidence float64
		wantErr        bool
		wantRetryable  bool
	}{
		{
			name:           "success with default confidence",
			status:         http.StatusOK,
			body:           `{"data":{"translations":[{"translatedText":"नमस्ते __PLACEHOLDER_0__"}]}}`,
			wantText:       "नमस्ते __PLACEHOLDER_0__",
			wantConfidence: 0.9,
		},
		{
			name:           "success with detected confidence",
			status:         http.StatusOK,
			body:           `{"data":{"translations":[{"translatedText":"Hello","detectedSourceConfidence":0.72}]}}`,
			wantText:       "Hello",
			wantConfidence: 0.72,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{"data":{}}`,
			wantErr: true,
		},
		{
			name:          "quota exceeded",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"message":"quota"}}`,
			wantErr:       true,
			wantRetryable: true,
		},
		{
			name:    "bad key",
			status:  http.StatusForbidden,
			body:    `{"error":{"message":"forbidden"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Expected POST, got %s", r.Method)
				}
				q := r.URL.Query()
				if q.Get("key") != "secret" || q.Get("source") != "en" || q.Get("target") != "hi" || q.Get("format") != "text" {
					t.Errorf("Unexpected query %v", q)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewGoogleProvider(GoogleConfig{APIKey: "secret", Endpoint: server.URL})
			resp, err := p.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				if queryfarmer.IsRetryable(err) != tt.wantRetryable {
					t.Errorf("IsRetryable = %v, want %v (%v)", !tt.wantRetryable, tt.wantRetryable, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if resp.Text != tt.wantText || resp.Confidence != tt.wantConfidence {
				t.Errorf("Translate = %+v, want %q at %v", resp, tt.wantText, tt.wantConfidence)
			}
		})
	}
}

func TestGoogleProvider_MissingKey(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{})

	_, err := p.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})

	var providerErr *queryfarmer.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected *ProviderError, got %v", err)
	}
	if providerErr.Retryable {
		t.Error("Missing key must not be retryable")
	}
}
