package token

// Pos is a source location: a 1-based line number and the 0-based byte
// offset of the referenced character within the whole source buffer. Unlike
// a packed line/column encoding, Offset is kept as a plain field since
// global_character_index has no practical upper bound for a single-file
// compiler reading an arbitrarily large buffer.
//
// Invariant: Offset lies within the source buffer it was produced from, for
// the lifetime of that buffer.
type Pos struct {
	Line   int32
	Offset int32
}

// NoPos is the zero value of Pos, used where no source location applies
// (e.g. synthesized nodes).
var NoPos = Pos{}

// Valid reports whether p refers to an actual location rather than NoPos.
func (p Pos) Valid() bool {
	return p.Line > 0
}
