package retention

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"strata-hq/strata/pkg/ingest"
)

// Document is the on-disk form of a policy. JSON documents parse as well,
// JSON being a subset of YAML.
type Document struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Rules       []Rule `yaml:"rules" json:"rules"`
}

// Policy validates the document and builds a Policy.
func (d Document) Policy() (*Policy, error) {
	return NewPolicy(d.Name, d.Description, d.Rules...)
}

// ParsePolicy parses a YAML or JSON policy document. Unknown fields are
// rejected.
func ParsePolicy(data []byte) (*Policy, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, ingest.NewConfigError("retention.rules_file", fmt.Sprintf("parse policy: %v", err))
	}
	return doc.Policy()
}

// LoadPolicy reads and parses a policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ingest.NewConfigError("retention.rules_file", fmt.Sprintf("read %s: %v", path, err))
	}
	return ParsePolicy(data)
}
