package queryfarmer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_Success(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	callCount := 0
	result, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_RetryableError(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	}

	callCount := 0
	result, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", &ProviderError{Message: "rate limited", Retryable: true}
		}
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	callCount := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", &ProviderError{Message: "invalid api key", Retryable: false}
	})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected *ProviderError, got %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected 1 call for non-retryable error, got %d", callCount)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	callCount := 0
	_, err := WithRetry(context.Background(), cfg, func() (int, error) {
		callCount++
		return 0, &ProviderError{Message: "server error", Retryable: true}
	})

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !IsRetryable(err) {
		t.Errorf("Expected last error to be returned, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	callCount := 0
	_, err := WithRetry(ctx, cfg, func() (string, error) {
		callCount++
		return "", &ProviderError{Message: "unavailable", Retryable: true}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", callCount)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"context canceled", context.Canceled, false},
		{"deadline wrapped in provider error", &ProviderError{Cause: context.DeadlineExceeded, Retryable: true}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryableProvider(t *testing.T) {
	attempts := 0
	inner := newStubProvider(func(context.Context, ProviderRequest) (ProviderResponse, error) {
		attempts++
		if attempts == 1 {
			return ProviderResponse{}, &ProviderError{Message: "503", Retryable: true}
		}
		return ProviderResponse{Text: "ok", Confidence: 0.9}, nil
	})
	p := NewRetryableProvider(inner, RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	resp, err := p.Translate(context.Background(), ProviderRequest{Text: "x", SourceLang: "en", TargetLang: "hi"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q", resp.Text)
	}
	if inner.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", inner.Calls())
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q", p.Name())
	}
}
