package output

import (
	"github.com/arthur-debert/silkmod/pkg/types"
)

// Line is one styled line of a report
type Line struct {
	Style string `json:"style,omitempty"`
	Text  string `json:"text"`
}

// Table is a header row plus data rows
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Report is what a command hands to a Renderer
type Report struct {
	Title string `json:"title,omitempty"`
	Table *Table `json:"table,omitempty"`
	Lines []Line `json:"lines,omitempty"`

	// Data is encoded instead of the report by the JSON renderer
	Data interface{} `json:"-"`
}

// Add appends a styled line
func (r *Report) Add(style, text string) *Report {
	r.Lines = append(r.Lines, Line{Style: style, Text: text})
	return r
}

// SeverityStyle maps a conflict severity to its style name
func SeverityStyle(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return "Critical"
	case types.SeverityWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// StatusStyle maps a compatibility verdict to its style name
func StatusStyle(s types.CompatibilityStatus) string {
	switch s {
	case types.CompatibilityCompatible:
		return "Success"
	case types.CompatibilityIncompatible:
		return "Critical"
	default:
		return "Warning"
	}
}
