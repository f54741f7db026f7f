// Package diag implements the diagnostic accumulation and rendering
// discipline of the compiler front end: the parser (which folds in the
// lexer's diagnostics) and the analyzer report problems through a diag.List
// rather than failing outright, modeled on the accumulate-then-sort
// discipline of go/scanner's ErrorList.
package diag

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"vxc/lang/token"
)

// Diagnostic is a single reported problem, anchored to a source position.
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

func (d Diagnostic) String() string {
	if !d.Pos.Valid() {
		return d.Msg
	}
	return fmt.Sprintf("LINE %d: %s", d.Pos.Line, d.Msg)
}

// List accumulates diagnostics across a phase. The zero value is ready to
// use. A phase appends to it and keeps going (panic-mode or best-effort
// recovery); the driver decides when a non-empty List is fatal.
type List struct {
	items []Diagnostic
}

// Add records a new diagnostic at pos.
func (l *List) Add(pos token.Pos, format string, args ...any) {
	l.items = append(l.items, Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// AddRaw appends an already-constructed diagnostic.
func (l *List) AddRaw(d Diagnostic) {
	l.items = append(l.items, d)
}

// Len reports the number of accumulated diagnostics.
func (l *List) Len() int { return len(l.items) }

// HasErrors reports whether any diagnostic has been recorded.
func (l *List) HasErrors() bool { return len(l.items) > 0 }

// All returns the accumulated diagnostics in the order they were added.
func (l *List) All() []Diagnostic { return l.items }

// Sort orders diagnostics by line, then by insertion order within a line
// (stable), matching the reporting order a reader would scan top to bottom.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Pos.Line < l.items[j].Pos.Line
	})
}

// Merge appends every diagnostic in other to l, in order.
func (l *List) Merge(other List) {
	l.items = append(l.items, other.items...)
}

// Print renders every diagnostic to w, each as a "LINE n: message" header
// followed by the offending source line and a caret pointing at the column,
// per the diagnostic printer design: the line is found by scanning backward
// and forward from the position's byte offset for '\n', and the column is
// the offset's distance from the line start.
func (l *List) Print(w *bytes.Buffer, src []byte) {
	for _, d := range l.items {
		fmt.Fprintln(w, d.String())
		if d.Pos.Valid() {
			printExcerpt(w, src, d.Pos)
		}
	}
}

func printExcerpt(w *bytes.Buffer, src []byte, pos token.Pos) {
	off := int(pos.Offset)
	if off < 0 || off > len(src) {
		return
	}
	start := off
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := off
	for end < len(src) && src[end] != '\n' {
		end++
	}
	line := src[start:end]
	col := off - start

	fmt.Fprintln(w, string(line))
	fmt.Fprintln(w, strings.Repeat(" ", col)+"^")
}

// Error renders the list as a single multi-line error string, satisfying the
// error interface so a List can be returned directly where a phase needs to
// report "something went wrong" without the caller re-deriving that from
// HasErrors.
func (l *List) Error() string {
	var b strings.Builder
	for i, d := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}
