package logger

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Level: "info", Format: "json", Output: "stdout"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid level to fail validation")
	}

	cfg.Level = "info"
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid format to fail validation")
	}
}

func TestFields(t *testing.T) {
	f := Fields("op", "bind", "count", 3)
	if f["op"] != "bind" {
		t.Errorf("expected bind, got %v", f["op"])
	}
	if f["count"] != 3 {
		t.Errorf("expected 3, got %v", f["count"])
	}
}

func TestFields_OddArgs(t *testing.T) {
	f := Fields("op", "bind", "dangling")
	if len(f) != 1 {
		t.Errorf("expected dangling key ignored, got %v", f)
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("resolve", 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500, got %v", f[FieldDuration])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	// Must not panic or write anywhere.
	l.Info("ignored")
	l.WithComponent("sink").Warn("ignored", Fields("k", "v"))
}
