package token

import "testing"

func TestPosValid(t *testing.T) {
	if NoPos.Valid() {
		t.Fatal("NoPos must not be valid")
	}
	p := Pos{Line: 1, Offset: 0}
	if !p.Valid() {
		t.Fatal("line 1 offset 0 must be valid")
	}
}
