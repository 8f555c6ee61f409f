// Package formatter renders verification verdicts and counterexample
// traces for terminals, with optional coloring.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/kinduce/kinduce/internal/engine"
	"github.com/kinduce/kinduce/internal/logic"
)

var (
	provedStyle    = color.New(color.FgGreen, color.Bold)
	falsifiedStyle = color.New(color.FgRed, color.Bold)
	unknownStyle   = color.New(color.FgHiYellow, color.Bold)
	propStyle      = color.New(color.FgCyan, color.Bold)
	stepStyle      = color.New(color.FgHiBlue, color.Bold)
	varStyle       = color.New(color.FgWhite)
)

// Formatter writes verdicts in a fixed presentation. Colored output
// honors the NO_COLOR conventions of the color package.
type Formatter struct {
	plain bool
}

// New returns a colored formatter.
func New() *Formatter {
	return &Formatter{}
}

// NewPlain returns a formatter without any styling.
func NewPlain() *Formatter {
	return &Formatter{plain: true}
}

func (f *Formatter) sprintf(style *color.Color, format string, args ...interface{}) string {
	if f.plain {
		return fmt.Sprintf(format, args...)
	}
	return style.Sprintf(format, args...)
}

// Format renders a batch of verdicts, one block per property,
// counterexample traces included.
func (f *Formatter) Format(results []engine.Outcome) string {
	var builder strings.Builder
	for i, res := range results {
		builder.WriteString(f.FormatResult(res))
		if i+1 < len(results) {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// FormatResult renders a single verdict.
func (f *Formatter) FormatResult(res engine.Outcome) string {
	var builder strings.Builder

	name := f.sprintf(propStyle, "%s", res.Property)
	switch res.Status {
	case engine.StatusProved:
		verdict := f.sprintf(provedStyle, "proved")
		fmt.Fprintf(&builder, "%s: %s (by induction at depth %d)\n", name, verdict, res.Depth)

	case engine.StatusFalsified:
		verdict := f.sprintf(falsifiedStyle, "falsified")
		fmt.Fprintf(&builder, "%s: %s (counterexample of length %d)\n", name, verdict, res.Depth)
		if res.Trace != nil {
			builder.WriteString(f.formatTrace(res.Trace))
		}

	default:
		verdict := f.sprintf(unknownStyle, "unknown")
		fmt.Fprintf(&builder, "%s: %s at depth %d: %s\n", name, verdict, res.Depth, res.Reason)
	}

	return builder.String()
}

// formatTrace renders one indented line per step, listing the state
// variables in their declaration order.
func (f *Formatter) formatTrace(trace *engine.Trace) string {
	var builder strings.Builder
	for step, vals := range trace.Steps {
		label := f.sprintf(stepStyle, "step %d", step)
		fmt.Fprintf(&builder, "  %s |", label)
		for _, v := range trace.Vars {
			builder.WriteString(" ")
			builder.WriteString(f.sprintf(varStyle, "%s = %s", v.Name, renderVal(vals[v.Name])))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func renderVal(val logic.Val) string {
	if val == nil {
		return "?"
	}
	return val.String()
}
