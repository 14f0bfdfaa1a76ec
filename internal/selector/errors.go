package selector

import (
	"fmt"
	"strings"
)

// SyntaxError is raised at compile time — tokenizing or parsing — and
// carries enough context to render a caret diagnostic. The reference
// implementation this engine is ported from names this helper
// "SynaxError" in one call site (a typo); this port always spells it
// correctly and requires every parser error path to go through it.
type SyntaxError struct {
	Spec string
	Pos  int
	Note string
}

func (e *SyntaxError) Error() string {
	caret := ""
	if e.Pos > 0 {
		caret = strings.Repeat(" ", e.Pos-1)
	}
	return fmt.Sprintf("invalid format specification: %s\n\t%s\n\t%s^", e.Note, e.Spec, caret)
}
