package selector

import "strings"

// allTokens lists every operator token the general (outside-filter)
// lexical mode recognizes, in disambiguation order: longer prefixes
// that share a leading character with a shorter token must come first
// (+? before +) so the scanner prefers the longer match.
var allTokens = []string{"/", ",", "+?", "+", "(", ")", "[", "]"}

// filterTokens is the lexical mode active once a filter body has
// started: only the closing bracket terminates it, so arbitrary
// characters (including any of allTokens) are legal filter content.
var filterTokens = []string{"]"}

type token struct {
	text string
	// isOp is true for one of the fixed operator strings above, false
	// for a Name — a whitespace-trimmed run of non-operator characters.
	isOp bool
}

// Tokenizer splits a selector string into a finite token sequence,
// supports one-step pushback, and can render a parse-error message
// with the original string and a caret at the current position.
type Tokenizer struct {
	spec    string
	tokens  []token
	counter int
}

// NewTokenizer tokenizes spec up front using the general lexical mode.
func NewTokenizer(spec string) *Tokenizer {
	return &Tokenizer{spec: spec, tokens: tokenize(spec, allTokens)}
}

func tokenize(spec string, allowed []string) []token {
	var out []token
	currentlyAllowed := allowed
	for spec != "" {
		name, rest := takeUntilToken(spec, currentlyAllowed)
		spec = rest

		op := matchToken(spec, currentlyAllowed)
		spec = spec[len(op):]

		if op == "[" {
			currentlyAllowed = filterTokens
		} else {
			currentlyAllowed = allowed
		}

		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, token{text: trimmed})
		}
		if op != "" {
			out = append(out, token{text: op, isOp: true})
		}
	}
	return out
}

// matchToken returns the first entry of allowed that s starts with,
// or "" if none match.
func matchToken(s string, allowed []string) string {
	for _, t := range allowed {
		if strings.HasPrefix(s, t) {
			return t
		}
	}
	return ""
}

func takeUntilToken(s string, allowed []string) (name, rest string) {
	i := 0
	for i < len(s) {
		if matchToken(s[i:], allowed) != "" {
			break
		}
		i++
	}
	return s[:i], s[i:]
}

// Next returns the next token and true, or the zero token and false at
// end of input.
func (t *Tokenizer) Next() (token, bool) {
	if t.counter >= len(t.tokens) {
		t.counter++
		return token{}, false
	}
	tok := t.tokens[t.counter]
	t.counter++
	return tok, true
}

// Restore pushes the last-returned token back, so the next Next call
// returns it again. Only a single level of pushback is supported.
func (t *Tokenizer) Restore() {
	t.counter--
}

// position approximates the byte offset of the current token for
// caret diagnostics, computed as the sum of the lengths of all
// previously consumed (whitespace-trimmed) tokens. Because trimming
// drops whitespace that was actually present in the original string,
// this can undercount by the amount of trimmed whitespace — a quirk
// carried over from the reference implementation rather than fixed.
func (t *Tokenizer) position() int {
	if t.counter == 0 {
		return -1
	}
	n := t.counter - 1
	if n > len(t.tokens) {
		n = len(t.tokens)
	}
	pos := 0
	for _, tok := range t.tokens[:n] {
		pos += len(tok.text)
	}
	return pos
}

// SyntaxError builds a *SyntaxError carrying the original spec string
// and a caret at the current token's approximate position.
func (t *Tokenizer) SyntaxError(note string) *SyntaxError {
	return &SyntaxError{Spec: t.spec, Pos: t.position(), Note: note}
}
