package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("%q: %v", mode, err)
		}
		l.With("component", "test").Debug("ignored", "k", "v")
	}
	Nop().Info("discarded")
}

func TestKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "catalog").Warn("slow query", "elapsed_ms", 12)
	l.Error("store down", "driver", "sqlite")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Level != zapcore.WarnLevel || fields["component"] != "catalog" || fields["elapsed_ms"] != int64(12) {
		t.Fatalf("unexpected warn entry %+v %v", entries[0].Entry, fields)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["driver"] != "sqlite" {
		t.Fatalf("unexpected error entry %+v", entries[1])
	}
}
