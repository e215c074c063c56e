package retention

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"strata-hq/strata/pkg/ingest"
)

func fileCreatedAt(ts time.Time) *ingest.FileMetadata {
	return ingest.NewFileMetadata("id", "/data/f", 10, ts)
}

func TestPolicy_ShouldDeleteSecondsRule(t *testing.T) {
	p, err := NewPolicy("test", "", Rule{Type: "age", Unit: UnitSeconds, Value: 1, Action: ActionDelete})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}

	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	meta := fileCreatedAt(created)

	if p.ShouldDelete(meta, created) {
		t.Error("ShouldDelete() at T = true, want false")
	}
	if p.ShouldDelete(meta, created.Add(time.Second)) {
		t.Error("ShouldDelete() exactly at cutoff = true, want false")
	}
	if !p.ShouldDelete(meta, created.Add(2*time.Second)) {
		t.Error("ShouldDelete() at T+2s = false, want true")
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p, err := NewPolicy("tiered", "",
		Rule{Unit: UnitYears, Value: 1, Action: ActionDelete},
		Rule{Unit: UnitDays, Value: 30, Action: ActionArchive},
		Rule{Unit: UnitDays, Value: 7, Action: ActionDelete},
	)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := fileCreatedAt(created)

	tests := []struct {
		name      string
		now       time.Time
		wantMatch bool
		wantIndex int
		wantAct   Action
	}{
		{"fresh", created.AddDate(0, 0, 1), false, 0, ""},
		{"past one week", created.AddDate(0, 0, 10), true, 2, ActionDelete},
		{"past one month", created.AddDate(0, 0, 40), true, 1, ActionArchive},
		{"past one year", created.AddDate(1, 0, 1), true, 0, ActionDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := p.Evaluate(meta, tt.now)
			if ok != tt.wantMatch {
				t.Fatalf("Evaluate() matched = %v, want %v", ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if d.Index != tt.wantIndex || d.Action != tt.wantAct {
				t.Errorf("Evaluate() = rule %d %s, want rule %d %s", d.Index, d.Action, tt.wantIndex, tt.wantAct)
			}
		})
	}
}

func TestPolicy_EmptyNeverMatches(t *testing.T) {
	p, err := NewPolicy("empty", "")
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	if p.ShouldDelete(fileCreatedAt(time.Unix(0, 0)), time.Now()) {
		t.Error("empty policy matched")
	}
}

func TestNewPolicy_InvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{"unknown unit", Rule{Unit: "hours", Value: 1}, "unknown time unit"},
		{"unknown action", Rule{Unit: UnitDays, Value: 1, Action: "SHRED"}, "unknown action"},
		{"unknown type", Rule{Type: "size", Unit: UnitDays, Value: 1}, "unsupported rule type"},
		{"negative value", Rule{Unit: UnitDays, Value: -1}, "negative value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy("bad", "", Rule{Unit: UnitDays, Value: 1}, tt.rule)
			var cfgErr *ingest.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("NewPolicy() error = %v, want *ingest.ConfigError", err)
			}
			if cfgErr.Field != "retention.rules[1]" {
				t.Errorf("ConfigError.Field = %q", cfgErr.Field)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		rules   int
		wantErr bool
	}{
		{
			name: "yaml",
			data: `
name: default
description: reclaim old files
rules:
  - type: age
    unit: days
    value: 90
    action: ARCHIVE
  - type: age
    unit: years
    value: 1
`,
			rules: 2,
		},
		{
			name:  "json",
			data:  `{"name": "j", "rules": [{"type": "age", "unit": "seconds", "value": 5, "action": "DELETE"}]}`,
			rules: 1,
		},
		{
			name:  "empty document",
			data:  "",
			rules: 0,
		},
		{
			name:    "unknown unit",
			data:    "rules:\n  - {type: age, unit: minutes, value: 1}\n",
			wantErr: true,
		},
		{
			name:    "unknown field",
			data:    "rules:\n  - {type: age, unit: days, value: 1, when: never}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(p.Rules()) != tt.rules {
				t.Errorf("rules = %d, want %d", len(p.Rules()), tt.rules)
			}
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	data := "name: disk\nrules:\n  - {unit: weeks, value: 2, action: archive}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if p.Name() != "disk" {
		t.Errorf("Name() = %q, want disk", p.Name())
	}
	if r := p.Rules()[0]; r.Type != RuleTypeAge || r.Action != ActionArchive {
		t.Errorf("rule = %+v", r)
	}

	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadPolicy(missing) error = nil")
	}
}
