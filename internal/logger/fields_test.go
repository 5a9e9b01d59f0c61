package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  seeker_id  ", Value: "  42  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "seeker_id" || fields[0].String != "42" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), MatchFields("s-1", "p-1")...).Info("matching")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldSeeker] != "s-1" || ctx[FieldPosting] != "p-1" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("no panic")
}

func TestMatchFieldsSkipsMissingPosting(t *testing.T) {
	fields := MatchFields("s-1", "")
	if len(fields) != 1 || fields[0].Key != FieldSeeker {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestAIFields(t *testing.T) {
	fields := AIFields("  gemini  ", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	if empty := AIFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestScoreFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("scored", ScoreFields(92, 100)...)

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldScore] != int64(92) {
		t.Fatalf("expected score 92, got %v", ctx[FieldScore])
	}
	if ctx[FieldRelevance] != int64(100) {
		t.Fatalf("expected relevance 100, got %v", ctx[FieldRelevance])
	}
}
