// Package export writes the milestone list in interchange formats.
//
// Every format carries the same rows: label, rounded percentage and phase,
// in stored marker order. Exports read markers only; they never depend on
// the layout.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
)

// Format is an export encoding.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatCSV, FormatYAML, FormatMarkdown}

// ParseFormat resolves a format name. "yml" and "markdown" are accepted
// as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "yml":
		return FormatYAML, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		if slices.Contains(Formats, f) {
			return f, nil
		}
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q (want json, csv, yaml or md)", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Row is one exported milestone.
type Row struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Progress int    `json:"progress" yaml:"progress"`
	Phase    string `json:"phase" yaml:"phase"`
}

// Rows converts markers to export rows.
func Rows(markers []hill.Marker) []Row {
	rows := make([]Row, len(markers))
	for i, m := range markers {
		rows[i] = Row{ID: m.ID, Label: m.Label, Progress: m.Percent(), Phase: hill.PhaseOf(m.Progress)}
	}
	return rows
}

type document struct {
	Chart      string `json:"chart,omitempty" yaml:"chart,omitempty"`
	Milestones []Row  `json:"milestones" yaml:"milestones"`
}

// Encode writes markers in format f. chart names the chart in formats
// that have room for it.
func Encode(f Format, chart string, markers []hill.Marker) ([]byte, error) {
	doc := document{Chart: chart, Milestones: Rows(markers)}
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		return buf.Bytes(), nil
	case FormatCSV:
		return encodeCSV(doc.Milestones)
	case FormatMarkdown:
		return encodeMarkdown(chart, doc.Milestones), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", f)
	}
}

func encodeCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "label", "progress", "phase"})
	for _, r := range rows {
		_ = w.Write([]string{r.ID, r.Label, strconv.Itoa(r.Progress), r.Phase})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode csv")
	}
	return buf.Bytes(), nil
}

func encodeMarkdown(chart string, rows []Row) []byte {
	var buf bytes.Buffer
	if chart != "" {
		fmt.Fprintf(&buf, "# %s\n\n", chart)
	}
	buf.WriteString("| Milestone | Progress | Phase |\n")
	buf.WriteString("|---|---:|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&buf, "| %s | %d%% | %s |\n", escapeCell(r.Label), r.Progress, r.Phase)
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
