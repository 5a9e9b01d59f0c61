package utils

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	var slept time.Duration
	originalSleep := sleep
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = originalSleep }()

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slept != 2*time.Second {
		t.Fatalf("expected to sleep 2s, slept %v", slept)
	}
}

func TestWaitForCancelled(t *testing.T) {
	release := make(chan struct{})
	originalSleep := sleep
	sleep = func(time.Duration) { <-release }
	defer func() {
		close(release)
		sleep = originalSleep
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForNonPositive(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUniqueStrings(t *testing.T) {
	t.Parallel()

	got := UniqueStrings([]string{" Python ", "", "SQL", "Python", "  ", "sql"})
	expect := []string{"Python", "SQL", "sql"}

	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := map[string]struct {
		input string
		limit int
		want  string
	}{
		"disabled":         {input: "Senior data analyst", limit: 0, want: ""},
		"fits":             {input: "SQL", limit: 10, want: "SQL"},
		"cut":              {input: "machine learning", limit: 7, want: "machine..."},
		"counts runes":     {input: "Führungskraft", limit: 4, want: "Führ..."},
		"trims before cut": {input: "\n  {\"jobTitles\": []}  \n", limit: 100, want: "{\"jobTitles\": []}"},
	}

	for name, tc := range cases {
		if got := TruncateForLog(tc.input, tc.limit); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
