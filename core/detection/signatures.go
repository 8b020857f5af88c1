package detection

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"proxydash/core/storage"

	"gopkg.in/yaml.v3"
)

//go:embed signatures.yaml
var defaultSignatures []byte

// defaultHeuristicConfidence applies to tier 1 entries that do not set one.
const defaultHeuristicConfidence = 0.9

// Field is the page attribute a fingerprint is matched against.
type Field string

const (
	FieldTitle           Field = "title"
	FieldGenerator       Field = "generator"
	FieldApplicationName Field = "application_name"
	FieldBody            Field = "body"
	FieldHeader          Field = "header"
)

// Classification is the payload shared by both signature kinds.
type Classification struct {
	Type        string  `yaml:"type"`
	Name        string  `yaml:"name"`
	Icon        string  `yaml:"icon"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Confidence  float64 `yaml:"confidence"`
}

func (c Classification) result(method Method) *Result {
	return &Result{
		Type:        c.Type,
		Name:        c.Name,
		Icon:        c.Icon,
		Category:    c.Category,
		Description: c.Description,
		Confidence:  c.Confidence,
		Method:      method,
	}
}

// Heuristic maps a keyword set to a classification.
type Heuristic struct {
	Classification `yaml:",inline"`
	Keywords       []string `yaml:"keywords"`

	keywords map[string]struct{}
}

// Fingerprint maps a pattern over one page field to a classification.
type Fingerprint struct {
	Classification `yaml:",inline"`
	Field          Field  `yaml:"field"`
	Header         string `yaml:"header"`
	Pattern        string `yaml:"pattern"`

	re *regexp.Regexp
}

// Table is an immutable, versioned signature set.
type Table struct {
	Version      string        `yaml:"version"`
	Heuristics   []Heuristic   `yaml:"heuristics"`
	Fingerprints []Fingerprint `yaml:"fingerprints"`
}

// ParseTable decodes and validates a YAML signature table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode signature table: %w", err)
	}

	for i := range t.Heuristics {
		h := &t.Heuristics[i]
		if h.Type == "" || len(h.Keywords) == 0 {
			return nil, fmt.Errorf("heuristic %d: type and keywords are required", i)
		}
		h.fillDefaults(defaultHeuristicConfidence)
		h.keywords = make(map[string]struct{}, len(h.Keywords))
		for _, k := range h.Keywords {
			h.keywords[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
		}
	}

	for i := range t.Fingerprints {
		f := &t.Fingerprints[i]
		if f.Type == "" || f.Pattern == "" {
			return nil, fmt.Errorf("fingerprint %d: type and pattern are required", i)
		}
		switch f.Field {
		case FieldTitle, FieldGenerator, FieldApplicationName, FieldBody, FieldHeader:
		default:
			return nil, fmt.Errorf("fingerprint %d (%s): unknown field %q", i, f.Type, f.Field)
		}
		if f.Confidence <= 0 || f.Confidence > 1 {
			return nil, fmt.Errorf("fingerprint %d (%s): confidence %.2f out of range", i, f.Type, f.Confidence)
		}
		re, err := regexp.Compile("(?is)" + f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %d (%s): %w", i, f.Type, err)
		}
		f.re = re
		f.fillDefaults(f.Confidence)
	}

	return &t, nil
}

func (c *Classification) fillDefaults(confidence float64) {
	if c.Name == "" {
		c.Name = c.Type
	}
	if c.Icon == "" {
		c.Icon = c.Type
	}
	if c.Confidence == 0 {
		c.Confidence = confidence
	}
}

// DefaultTable returns the embedded signature table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultSignatures)
}

// LoadTable picks the signature source: an object in storage, a local
// file, or the embedded default.
func LoadTable(ctx context.Context, cfg Config, client storage.Client, bucket string) (*Table, error) {
	switch {
	case cfg.SignaturesObject != "" && client != nil:
		data, err := storage.ReadObject(ctx, client, bucket, cfg.SignaturesObject)
		if err != nil {
			return nil, err
		}
		return ParseTable(data)
	case cfg.SignaturesFile != "":
		data, err := os.ReadFile(cfg.SignaturesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read signature file: %w", err)
		}
		return ParseTable(data)
	default:
		return DefaultTable()
	}
}

// PatternCount returns the number of heuristic keywords plus fingerprints.
func (t *Table) PatternCount() int {
	n := len(t.Fingerprints)
	for _, h := range t.Heuristics {
		n += len(h.Keywords)
	}
	return n
}

// TypeCount returns the number of distinct application types.
func (t *Table) TypeCount() int {
	types := make(map[string]struct{})
	for _, h := range t.Heuristics {
		types[h.Type] = struct{}{}
	}
	for _, f := range t.Fingerprints {
		types[f.Type] = struct{}{}
	}
	return len(types)
}
