package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"vxc/lang/diag"
	"vxc/lang/token"
)

func TestDiagnosticString(t *testing.T) {
	d := diag.Diagnostic{Pos: token.Pos{Line: 3, Offset: 10}, Msg: "undeclared identifier 'x'"}
	require.Equal(t, "LINE 3: undeclared identifier 'x'", d.String())
}

func TestListAddAndHasErrors(t *testing.T) {
	var l diag.List
	require.False(t, l.HasErrors())
	l.Add(token.Pos{Line: 1}, "unexpected token %q", ";")
	require.True(t, l.HasErrors())
	require.Equal(t, 1, l.Len())
	require.Equal(t, `unexpected token ";"`, l.All()[0].Msg)
}

func TestListSortByLine(t *testing.T) {
	var l diag.List
	l.Add(token.Pos{Line: 5}, "b")
	l.Add(token.Pos{Line: 1}, "a")
	l.Sort()
	require.Equal(t, int32(1), l.All()[0].Pos.Line)
	require.Equal(t, int32(5), l.All()[1].Pos.Line)
}

func TestListPrintExcerpt(t *testing.T) {
	src := []byte("fn main :: () -> (i32) {\n  x;\n}")
	var l diag.List
	l.Add(token.Pos{Line: 2, Offset: 28}, "undeclared identifier 'x'")

	var buf bytes.Buffer
	l.Print(&buf, src)

	out := buf.String()
	require.Contains(t, out, "LINE 2: undeclared identifier 'x'")
	require.Contains(t, out, "  x;")
	require.Contains(t, out, "^")
}

func TestListMerge(t *testing.T) {
	var a, b diag.List
	a.Add(token.Pos{Line: 1}, "first")
	b.Add(token.Pos{Line: 2}, "second")
	a.Merge(b)
	require.Equal(t, 2, a.Len())
}
