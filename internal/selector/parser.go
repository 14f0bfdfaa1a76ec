package selector

import (
	"regexp"
	"strconv"
)

// Parse builds a selector tree from a format selection string, the
// recursive-descent entry point for the whole grammar (choice / takeall /
// merge / primary / filter / atom). An empty spec yields a nil node.
func Parse(spec string) (node, error) {
	t := NewTokenizer(spec)
	return parseTokens(t, false, false, false)
}

// parseTokens consumes tokens until a terminator appropriate to the three
// mode flags, building up a flat comma list (lastSelector) and the selector
// currently under construction (currentSelector). The three flags mirror
// the reference parser's inside_merge_formats / inside_choice / inside_group:
// they only change where recursion stops, never what gets built.
func parseTokens(t *Tokenizer, insideMergeFormats, insideChoice, insideGroup bool) (node, error) {
	var lastSelector, currentSelector node

loop:
	for {
		tok, ok := t.Next()
		if !ok {
			break
		}

		switch {
		case tok.isOp && tok.text == "]":
			return nil, t.SyntaxError("unexpected ']'")

		case tok.isOp && tok.text == ")":
			if !insideGroup {
				t.Restore()
			}
			break loop

		case insideMergeFormats && tok.isOp && (tok.text == "/" || tok.text == ","):
			t.Restore()
			break loop

		case insideChoice && tok.isOp && tok.text == ",":
			t.Restore()
			break loop

		case tok.isOp && tok.text == ",":
			if currentSelector == nil {
				return nil, t.SyntaxError("',' must follow a format selector")
			}
			if lastSelector != nil {
				lastSelector = newTakeAll(lastSelector, currentSelector)
			} else {
				lastSelector = currentSelector
			}
			currentSelector = nil

		case tok.isOp && tok.text == "/":
			if currentSelector == nil {
				return nil, t.SyntaxError("'/' must follow a format selector")
			}
			rhs, err := parseTokens(t, false, true, false)
			if err != nil {
				return nil, err
			}
			if rhs != nil {
				currentSelector = newTakeFirst(currentSelector, rhs)
			}

		case tok.isOp && tok.text == "[":
			if currentSelector == nil {
				currentSelector = newSelectBest("", 1, "")
			}
			body, ok := t.Next()
			if !ok || body.isOp {
				return nil, t.SyntaxError("'[' must be followed by a filter body")
			}
			closing, ok := t.Next()
			if !ok || !(closing.isOp && closing.text == "]") {
				return nil, t.SyntaxError("filters must be closed with ']'")
			}
			if err := currentSelector.addFilter(body.text, t.position()); err != nil {
				if se, ok := err.(*SyntaxError); ok && se.Spec == "" {
					se.Spec = t.spec
				}
				return nil, err
			}

		case tok.isOp && tok.text == "(":
			if currentSelector != nil {
				return nil, t.SyntaxError("unexpected '('")
			}
			inner, err := parseTokens(t, false, false, true)
			if err != nil {
				return nil, err
			}
			currentSelector = inner

		case tok.isOp && (tok.text == "+" || tok.text == "+?"):
			if currentSelector == nil {
				return nil, t.SyntaxError("'+' must follow a format selector")
			}
			rhs, err := parseTokens(t, true, false, false)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, t.SyntaxError("'+' must be followed by a format selector")
			}
			currentSelector = newMerge(currentSelector, rhs, tok.text == "+?")

		default:
			n, err := parseNameToken(tok.text, t)
			if err != nil {
				return nil, err
			}
			currentSelector = n
		}
	}

	if currentSelector != nil && lastSelector != nil {
		return newTakeAll(lastSelector, currentSelector), nil
	}
	if currentSelector != nil {
		return currentSelector, nil
	}
	return lastSelector, nil
}

// nameRE mirrors the reference _SelectorMobj.SELECTOR_RE exactly:
//
//	(merge)?(all)?(best|worst|b|w)?(video|audio|v|a)?(\*)?(?:\.([1-9]\d*))?(?:\{(\w+)\})?
//
// matched against the whole token. A token that fails to fully match is a
// literal format id, not a selector keyword combination.
var nameRE = regexp.MustCompile(`^(merge)?(all)?(best|worst|b|w)?(video|audio|v|a)?(\*)?(?:\.([1-9]\d*))?(?:\{(\w+)\})?$`)

func parseNameToken(tok string, t *Tokenizer) (node, error) {
	m := nameRE.FindStringSubmatch(tok)
	if m == nil {
		return newFormatID(tok), nil
	}
	merge, all, which, what, star, nStr, field := m[1] != "", m[2] != "", m[3], m[4], m[5] != "", m[6], m[7]

	// is_valid, ported from the reference _SelectorMobj: all three
	// rejection rules are independent, so check each explicitly rather
	// than collapsing them into one condition.
	if all && (field != "" || which != "" || nStr != "") {
		return nil, t.SyntaxError("invalid format selector: " + tok)
	}
	if !all && which == "" {
		return nil, t.SyntaxError("invalid format selector: " + tok)
	}
	if !all && merge && field == "" {
		return nil, t.SyntaxError("invalid format selector: " + tok)
	}

	selType := selectorType(what, star)

	if which != "" {
		n := 1
		if nStr != "" {
			n, _ = strconv.Atoi(nStr)
		}
		if which == "w" || which == "worst" {
			n = -n
		}
		if merge {
			return newMergeBest(selType, n, field), nil
		}
		return newSelectBest(selType, n, field), nil
	}

	if merge {
		return newMergeAll(selType), nil
	}
	return newSelectAll(selType), nil
}

// selectorType mirrors _SelectorMobj.type: f'{what[:1]}{containing}'.
func selectorType(what string, star bool) string {
	base := ""
	switch what {
	case "v", "video":
		base = "v"
	case "a", "audio":
		base = "a"
	}
	if star {
		return base + "*"
	}
	return base
}
