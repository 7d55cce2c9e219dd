package ast

import (
	"bufio"
	"io"
	"strings"

	"github.com/cabezudo/jtree"
)

// A Formatter carries the settings for pretty-printing values.
// A zero value is ready for use with default settings.
type Formatter struct {
	// The text used for each level of indentation; if "", two spaces.
	Indent string
}

func (f Formatter) indent() string {
	if f.Indent == "" {
		return "  "
	}
	return f.Indent
}

// Format renders a pretty-printed representation of v to w with default
// settings.
func Format(w io.Writer, v Value) error {
	var f Formatter
	return f.Format(w, v)
}

// Indent returns a pretty-printed representation of v with default settings.
func Indent(v Value) string {
	var sb strings.Builder
	Format(&sb, v) // writes to a strings.Builder do not fail
	return sb.String()
}

// Format renders a pretty-printed representation of v to w using the settings
// from f. Each array element and object member is written on its own line,
// indented one level deeper than its container. Empty arrays and objects are
// written as [] and {}. The output does not end with a newline.
func (f Formatter) Format(w io.Writer, v Value) error {
	bw := bufio.NewWriter(w)
	f.formatValue(bw, v, "")
	return bw.Flush()
}

// formatValue writes a representation of v to w indented by indent.
func (f Formatter) formatValue(w *bufio.Writer, v Value, indent string) {
	switch t := v.(type) {
	case *Array:
		if len(t.values) == 0 {
			w.WriteString("[]")
			return
		}
		w.WriteString("[\n")
		adent := indent + f.indent()
		for i, elt := range t.values {
			w.WriteString(adent)
			f.formatValue(w, elt, adent)
			f.endLine(w, i, len(t.values))
		}
		w.WriteString(indent + "]")

	case *Object:
		if len(t.members) == 0 {
			w.WriteString("{}")
			return
		}
		w.WriteString("{\n")
		mdent := indent + f.indent()
		for i, m := range t.members {
			w.WriteString(mdent + jtree.Quote(m.key) + ": ")
			f.formatValue(w, m.Value, mdent)
			f.endLine(w, i, len(t.members))
		}
		w.WriteString(indent + "}")

	case nil:
		w.WriteString("null")

	default:
		w.WriteString(v.JSON())
	}
}

// endLine terminates the line for item i of n, with a comma if it is not the
// last item.
func (Formatter) endLine(w *bufio.Writer, i, n int) {
	if i < n-1 {
		w.WriteByte(',')
	}
	w.WriteByte('\n')
}
