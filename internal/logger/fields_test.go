package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		kv   []string
		want map[string]string
	}{
		{name: "trimmed", kv: []string{"  source ", " usajobs "}, want: map[string]string{"source": "usajobs"}},
		{name: "blank value skipped", kv: []string{"source", "  ", "search_id", "42"}, want: map[string]string{"search_id": "42"}},
		{name: "blank key skipped", kv: []string{" ", "value"}, want: map[string]string{}},
		{name: "dangling key ignored", kv: []string{"source", "sample", "search_id"}, want: map[string]string{"source": "sample"}},
		{name: "empty", want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Strings(tt.kv...)
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d: %+v", len(tt.want), len(fields), fields)
			}
			for _, f := range fields {
				if tt.want[f.Key] != f.String {
					t.Fatalf("unexpected field %s=%q", f.Key, f.String)
				}
			}
		})
	}
}

func TestWithNilLogger(t *testing.T) {
	l := With(nil, zap.String("foo", "bar"))
	if l == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	l.Info("does not panic")
}

func TestWithSearch(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	l := WithSearch(zap.New(core), "3f1c", "")
	l.Info("searching")
	WithSearch(l, "", "usajobs").Info("filtered")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldSearchID] != "3f1c" {
		t.Fatalf("expected search id field, got %v", first)
	}
	if _, ok := first[FieldSource]; ok {
		t.Fatalf("empty source must be omitted: %v", first)
	}

	second := entries[1].ContextMap()
	if second[FieldSearchID] != "3f1c" || second[FieldSource] != "usajobs" {
		t.Fatalf("unexpected fields: %v", second)
	}
}

func TestWithAI(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAI(zap.New(core), "gemini", "gemini-2.5-flash").Info("evaluating")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}
