package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/position"
)

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	File     string
	Span     position.Span
	Message  string
	Severity Severity
	Code     string
	Source   string
	Related  []RelatedInformation
}

// RelatedInformation points at another location that explains a diagnostic
type RelatedInformation struct {
	File    string
	Span    position.Span
	Message string
}

// Severity represents the severity level of a diagnostic
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// TextSource resolves a file name to its text so spans can be turned into
// lines and columns
type TextSource func(file string) (string, bool)

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics []Diagnostic, texts TextSource) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeRelated struct {
	File    string      `json:"file"`
	Message string      `json:"message"`
	Range   vscodeRange `json:"range"`
}

type vscodeDiagnostic struct {
	File     string          `json:"file"`
	Severity int             `json:"severity"`
	Message  string          `json:"message"`
	Code     string          `json:"code,omitempty"`
	Source   string          `json:"source,omitempty"`
	Range    vscodeRange     `json:"range"`
	Related  []vscodeRelated `json:"relatedInformation,omitempty"`
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics []Diagnostic, texts TextSource) ([]byte, error) {
	indexes := newIndexCache(texts)

	result := make([]vscodeDiagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		rng, err := indexes.rangeOf(d.File, d.Span)
		if err != nil {
			return nil, err
		}
		vd := vscodeDiagnostic{
			File:     d.File,
			Severity: int(d.Severity),
			Message:  d.Message,
			Code:     d.Code,
			Source:   d.Source,
			Range:    rng,
		}
		for _, rel := range d.Related {
			rr, err := indexes.rangeOf(rel.File, rel.Span)
			if err != nil {
				return nil, err
			}
			vd.Related = append(vd.Related, vscodeRelated{File: rel.File, Message: rel.Message, Range: rr})
		}
		result = append(result, vd)
	}

	return json.Marshal(result)
}

// TextFormatter prints diagnostics the way compilers do, one per line, with
// 1-based display columns
type TextFormatter struct {
	Color bool
}

func NewTextFormatter(colorize bool) *TextFormatter {
	return &TextFormatter{Color: colorize}
}

// Format implements Formatter
func (f *TextFormatter) Format(diagnostics []Diagnostic, texts TextSource) ([]byte, error) {
	indexes := newIndexCache(texts)

	var buf bytes.Buffer
	for _, d := range diagnostics {
		li, err := indexes.get(d.File)
		if err != nil {
			return nil, err
		}
		line := li.Place(d.Span.Start).Line + 1
		col := li.DisplayColumn(d.Span.Start)

		sev := d.Severity.String()
		loc := fmt.Sprintf("%s:%d:%d", d.File, line, col)
		if f.Color {
			sev = severityColor(d.Severity).Sprint(sev)
			loc = color.New(color.Bold).Sprint(loc)
		}
		fmt.Fprintf(&buf, "%s: %s: %s", loc, sev, d.Message)
		if d.Code != "" {
			fmt.Fprintf(&buf, " [%s]", d.Code)
		}
		buf.WriteByte('\n')

		for _, rel := range d.Related {
			rli, err := indexes.get(rel.File)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "\t%s:%d:%d: %s\n", rel.File, rli.Place(rel.Span.Start).Line+1, rli.DisplayColumn(rel.Span.Start), rel.Message)
		}
	}
	return buf.Bytes(), nil
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SeverityError:
		return color.New(color.FgRed, color.Bold)
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case SeverityInformation:
		return color.New(color.FgBlue)
	}
	return color.New(color.Faint)
}

type indexCache struct {
	texts   TextSource
	indexes map[string]*position.LineIndex
}

func newIndexCache(texts TextSource) *indexCache {
	return &indexCache{texts: texts, indexes: map[string]*position.LineIndex{}}
}

func (c *indexCache) get(file string) (*position.LineIndex, error) {
	if li, ok := c.indexes[file]; ok {
		return li, nil
	}
	if c.texts == nil {
		return nil, errors.Errorf("no text source for %s", file)
	}
	text, ok := c.texts(file)
	if !ok {
		return nil, errors.Errorf("text of %s is not available", file)
	}
	li := position.NewLineIndex(text)
	c.indexes[file] = li
	return li, nil
}

func (c *indexCache) rangeOf(file string, span position.Span) (vscodeRange, error) {
	li, err := c.get(file)
	if err != nil {
		return vscodeRange{}, err
	}
	r := li.Range(span)
	return vscodeRange{
		Start: vscodePosition{Line: r.Start.Line, Character: r.Start.Character},
		End:   vscodePosition{Line: r.End.Line, Character: r.End.Character},
	}, nil
}
