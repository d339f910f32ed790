package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Analysis.BatchSize != 50 {
		t.Errorf("expected default batch size 50, got %d", c.Analysis.BatchSize)
	}
	if c.Analysis.MinObservations != 20 {
		t.Errorf("expected default min observations 20, got %d", c.Analysis.MinObservations)
	}
	if c.Analysis.SignificanceLevel != 0.05 {
		t.Errorf("expected default significance 0.05, got %v", c.Analysis.SignificanceLevel)
	}
	if c.Yahoo.LookbackDays != 30 {
		t.Errorf("expected default lookback 30, got %d", c.Yahoo.LookbackDays)
	}
	if c.Screen.ZThreshold != -2 {
		t.Errorf("expected default z threshold -2, got %v", c.Screen.ZThreshold)
	}
	if !c.LoggingEnabled() {
		t.Errorf("expected logging enabled by default")
	}
	if c.Yahoo.Timeout != 10*time.Second {
		t.Errorf("expected default fetch timeout 10s, got %v", c.Yahoo.Timeout)
	}
}

func TestLoadDisableLoggingSticks(t *testing.T) {
	c, err := Load(writeConfig(t, "logging:\n  enabled: false\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.LoggingEnabled() {
		t.Fatalf("explicit enabled:false must not be reset by defaults")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero batch size", "analysis:\n  batch_size: -1\n"},
		{"alpha above one", "analysis:\n  significance_level: 1.5\n"},
		{"tiny lookback", "yahoo:\n  lookback_days: 2\n"},
		{"bad level", "logging:\n  level: shout\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestEventsRequireBrokers(t *testing.T) {
	if _, err := Load(writeConfig(t, "events:\n  enabled: true\n")); err == nil {
		t.Fatalf("expected broker requirement error")
	}
}

func TestExcludedSet(t *testing.T) {
	c, err := Load(writeConfig(t, "analysis:\n  excluded_symbols: [fb, ' sivb ']\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	set := c.ExcludedSet()
	if _, ok := set["FB"]; !ok {
		t.Errorf("expected FB in exclusion set")
	}
	if _, ok := set["SIVB"]; !ok {
		t.Errorf("expected SIVB in exclusion set (trimmed, uppercased)")
	}
}
