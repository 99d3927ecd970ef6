package extract

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second},
		{40, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicy_DoCustomRetryable(t *testing.T) {
	transient := errors.New("transient")
	p := RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		Retryable:   func(err error) bool { return errors.Is(err, transient) },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}

	attempts, err := p.Do(context.Background(), func(attempt int) error {
		if attempt < 3 {
			return transient
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Errorf("Do = %d, %v; want 3, nil", attempts, err)
	}

	calls := 0
	attempts, err = p.Do(context.Background(), func(int) error {
		calls++
		return transient
	})
	if !errors.Is(err, transient) || attempts != 4 || calls != 4 {
		t.Errorf("exhausted Do = %d, %v (calls %d)", attempts, err, calls)
	}
}

func TestRetryPolicy_ZeroValueSingleAttempt(t *testing.T) {
	var p RetryPolicy
	calls := 0
	attempts, err := p.Do(context.Background(), func(int) error {
		calls++
		return &ValidationError{Reason: "bad"}
	})
	if calls != 1 || attempts != 1 || !IsValidationError(err) {
		t.Errorf("calls=%d attempts=%d err=%v", calls, attempts, err)
	}
}

func TestValidationError(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := error(&ValidationError{Reason: "response is not valid JSON", Err: inner})
	if err.Error() != "response is not valid JSON: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("ValidationError should unwrap to its cause")
	}
	wrapped := errors.Join(errors.New("ctx"), err)
	if !IsValidationError(wrapped) {
		t.Error("IsValidationError should see through wrapping")
	}
	if IsValidationError(inner) {
		t.Error("plain error is not a validation error")
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`  {"a":1}  `, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"```json\n{\"a\":1}", `{"a":1}`},
		{"```{}```", `{}`},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
