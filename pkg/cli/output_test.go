package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type testTable struct{}

func (testTable) Header() []string { return []string{"ID", "SIZE"} }
func (testTable) Rows() [][]string {
	return [][]string{{"a1", "10"}, {"b22", "2048"}}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"plain value", "stored abc", "stored abc\n"},
		{"table", testTable{}, "ID   SIZE\na1   10\nb22  2048\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := (&TextFormatter{}).FormatTo(buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	data := map[string]int{"deleted": 3}

	if err := NewFormatter(FormatJSON).FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got map[string]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["deleted"] != 3 {
		t.Errorf("decoded = %v", got)
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatCSV).FormatTo(buf, testTable{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "ID,SIZE\na1,10\nb22,2048\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}

	if err := NewFormatter(FormatCSV).FormatTo(&bytes.Buffer{}, "not a table"); err == nil ||
		!strings.Contains(err.Error(), "not supported") {
		t.Errorf("FormatTo(non-table) error = %v", err)
	}
}
