package emit

import (
	"fmt"
	"strings"
)

// Writer is an append-only statement buffer with block scoping.
type Writer struct {
	lines  []string
	indent int
}

// Line appends one formatted statement at the current indentation.
func (w *Writer) Line(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	w.lines = append(w.lines, strings.Repeat("\t", w.indent)+s)
}

// Open starts a block.
func (w *Writer) Open() {
	w.Line("{")
	w.indent++
}

// Close ends the innermost block.
func (w *Writer) Close() { w.CloseWith("") }

// CloseWith ends the innermost block with suffix after the brace, as in "};".
func (w *Writer) CloseWith(suffix string) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line("}%s", suffix)
}

// Len returns the number of lines written.
func (w *Writer) Len() int { return len(w.lines) }

// Lines returns the written lines without trailing newlines.
func (w *Writer) Lines() []string { return w.lines }

func (w *Writer) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}
