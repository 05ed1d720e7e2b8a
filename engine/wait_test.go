package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitUntil_ConditionMet(t *testing.T) {
	calls := 0
	ok, err := WaitUntil(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected condition to be met")
	}
	if calls != 3 {
		t.Errorf("condition evaluated %d times, want 3", calls)
	}
}

func TestWaitUntil_TimeoutIsNotAnError(t *testing.T) {
	start := time.Now()
	ok, err := WaitUntil(context.Background(), 30*time.Millisecond, 5*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected condition not to be met")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %v, before the timeout", elapsed)
	}
}

func TestWaitUntil_ErrorsCountAsNotReady(t *testing.T) {
	calls := 0
	ok, err := WaitUntil(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		if calls == 1 {
			return true, errors.New("transient")
		}
		return true, nil
	})
	if err != nil || !ok {
		t.Fatalf("WaitUntil = (%v, %v), want (true, nil)", ok, err)
	}
	if calls != 2 {
		t.Errorf("condition evaluated %d times, want 2", calls)
	}
}

func TestWaitUntil_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := WaitUntil(ctx, time.Second, time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if ok {
		t.Error("expected condition not to be met")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep returned %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep on canceled ctx = %v, want context.Canceled", err)
	}
}
