package renderer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/moepig/aws-inventory/resources"
	"gopkg.in/yaml.v3"
)

// Format is an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported output formats
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %q, valid formats are: table, json, yaml", s)
}

// Section is one titled report
type Section struct {
	Title   string
	Type    resources.Type
	Region  string
	Columns resources.Columns
	Rows    []resources.Row
}

// document is the structured form of a section
type document struct {
	Title   string           `json:"title" yaml:"title"`
	Type    string           `json:"type" yaml:"type"`
	Region  string           `json:"region,omitempty" yaml:"region,omitempty"`
	Columns []string         `json:"columns" yaml:"columns"`
	Rows    []map[string]any `json:"rows" yaml:"rows"`
}

// Renderer writes report sections. Tables are written as sections arrive;
// JSON and YAML are collected and written as one document by Close.
type Renderer struct {
	out    io.Writer
	format Format
	docs   []document
}

// NewRenderer creates a new Renderer
func NewRenderer(out io.Writer, format Format) *Renderer {
	return &Renderer{
		out:    out,
		format: format,
	}
}

// Render renders one section
func (r *Renderer) Render(section Section) error {
	if r.format == FormatTable {
		return r.renderTable(section)
	}
	r.docs = append(r.docs, toDocument(section))
	return nil
}

// Close writes the buffered document for structured formats
func (r *Renderer) Close() error {
	docs := r.docs
	if docs == nil {
		docs = []document{}
	}

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
	}
	return nil
}

func (r *Renderer) renderTable(section Section) error {
	if _, err := fmt.Fprintf(r.out, "\n=== %s ===\n\n", section.Title); err != nil {
		return fmt.Errorf("failed to write section header: %w", err)
	}
	if len(section.Rows) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	rules := make([]string, len(section.Columns))
	for i, col := range section.Columns {
		rules[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(w, strings.Join(section.Columns, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))

	cells := make([]string, len(section.Columns))
	for _, row := range section.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = sanitize(resources.FormatValue(row[i]))
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// sanitize keeps a cell on one line and inside its column
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

func toDocument(section Section) document {
	rows := make([]map[string]any, 0, len(section.Rows))
	for _, row := range section.Rows {
		m := make(map[string]any, len(section.Columns))
		for i, col := range section.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		rows = append(rows, m)
	}
	return document{
		Title:   section.Title,
		Type:    string(section.Type),
		Region:  section.Region,
		Columns: section.Columns,
		Rows:    rows,
	}
}
