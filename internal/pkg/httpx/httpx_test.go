package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type codedError struct{ code int }

func (e *codedError) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e *codedError) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	retryable := []int{408, 429, 500, 502, 503, 599}
	for _, code := range retryable {
		if !IsRetryableHTTPStatus(code) {
			t.Errorf("status %d must be retryable", code)
		}
	}
	terminal := []int{200, 400, 401, 403, 404, 422}
	for _, code := range terminal {
		if IsRetryableHTTPStatus(code) {
			t.Errorf("status %d must not be retryable", code)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatal("nil is not retryable")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded must be retryable")
	}
	if !IsRetryableError(fmt.Errorf("wrapped: %w", &codedError{code: 503})) {
		t.Fatal("wrapped 503 must be retryable")
	}
	if IsRetryableError(&codedError{code: 404}) {
		t.Fatal("404 must not be retryable")
	}
	if IsRetryableError(errors.New("plain")) {
		t.Fatal("plain error must not be retryable")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryAfterDuration(resp, time.Second, time.Minute); got != 3*time.Second {
		t.Fatalf("Retry-After honored = %v, want 3s", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("cap = %v, want 2s", got)
	}
	if got := RetryAfterDuration(nil, time.Second, time.Minute); got != time.Second {
		t.Fatalf("fallback = %v, want 1s", got)
	}
}

func TestJitterSleepBounds(t *testing.T) {
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("zero base = %v, want 0", got)
	}
	base := time.Second
	for i := 0; i < 100; i++ {
		got := JitterSleep(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter %v outside the 20%% band around %v", got, base)
		}
	}
}
