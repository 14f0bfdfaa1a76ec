package selector

import "testing"

func mustParse(t *testing.T, spec string) node {
	t.Helper()
	n, err := Parse(spec)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", spec, err)
	}
	return n
}

func TestParseSimpleNames(t *testing.T) {
	tests := []struct {
		spec string
		what string
		n    int
	}{
		{"best", "", 1},
		{"worst", "", -1},
		{"bestvideo", "v", 1},
		{"bv", "v", 1},
		{"worstaudio", "a", -1},
		{"wa", "a", -1},
		{"bv*", "v*", 1},
		{"best.2", "", 2},
		{"worst.3", "", -3},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got := mustParse(t, tt.spec)
			sb, ok := got.(*selectBestNode)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want *selectBestNode", tt.spec, got)
			}
			if sb.what != tt.what || sb.n != tt.n {
				t.Fatalf("Parse(%q) = {what:%q n:%d}, want {what:%q n:%d}", tt.spec, sb.what, sb.n, tt.what, tt.n)
			}
		})
	}
}

func TestParseAllVariants(t *testing.T) {
	got := mustParse(t, "all")
	if sa, ok := got.(*selectAllNode); !ok || sa.what != "*" {
		t.Fatalf("Parse(all) = %#v, want selectAllNode{what:*}", got)
	}

	got = mustParse(t, "allv")
	if sa, ok := got.(*selectAllNode); !ok || sa.what != "v" {
		t.Fatalf("Parse(allv) = %#v, want selectAllNode{what:v}", got)
	}
}

func TestParseFieldBucket(t *testing.T) {
	got := mustParse(t, "best{height}")
	sb, ok := got.(*selectBestNode)
	if !ok || sb.field != "height" {
		t.Fatalf("Parse(best{height}) = %#v, want field=height", got)
	}
}

func TestParseMergeBest(t *testing.T) {
	got := mustParse(t, "mergebest{height}")
	mb, ok := got.(*mergeBestNode)
	if !ok || mb.field != "height" {
		t.Fatalf("Parse(mergebest{height}) = %#v, want *mergeBestNode{field:height}", got)
	}
}

func TestParseMergeAllWithoutFieldIsValid(t *testing.T) {
	// "all" absorbs the merge-without-field rule: mergeall needs no field,
	// unlike mergebest/mergeworst. A field combined with "all" is still
	// rejected, with or without the merge prefix.
	got := mustParse(t, "mergeall")
	if _, ok := got.(*mergeAllNode); !ok {
		t.Fatalf("Parse(mergeall) = %#v, want *mergeAllNode", got)
	}
	if _, err := Parse("mergeall{language}"); err == nil {
		t.Fatal("Parse(mergeall{language}) should error: 'all' combined with a field")
	}
}

func TestParseMergeBestRequiresField(t *testing.T) {
	if _, err := Parse("mergebest"); err == nil {
		t.Fatal("Parse(mergebest) should error: merge of a non-all selector without a field")
	}
}

func TestParsePlusBuildsMergeNode(t *testing.T) {
	got := mustParse(t, "bv+ba")
	m, ok := got.(*mergeNode)
	if !ok {
		t.Fatalf("Parse(bv+ba) = %T, want *mergeNode", got)
	}
	if m.optional {
		t.Fatal("'+' should not be optional")
	}
	left, ok := m.left.(*selectBestNode)
	if !ok || left.what != "v" {
		t.Fatalf("left = %#v, want selectBestNode{what:v}", m.left)
	}
	right, ok := m.right.(*selectBestNode)
	if !ok || right.what != "a" {
		t.Fatalf("right = %#v, want selectBestNode{what:a}", m.right)
	}
}

func TestParsePlusOptional(t *testing.T) {
	got := mustParse(t, "bv+?ba")
	m, ok := got.(*mergeNode)
	if !ok || !m.optional {
		t.Fatalf("Parse(bv+?ba) = %#v, want optional mergeNode", got)
	}
}

func TestParseSlashBuildsTakeFirst(t *testing.T) {
	got := mustParse(t, "bv*+ba/b")
	tf, ok := got.(*takeFirstNode)
	if !ok {
		t.Fatalf("Parse(bv*+ba/b) = %T, want *takeFirstNode", got)
	}
	if len(tf.parts) != 2 {
		t.Fatalf("len(parts) = %d, want 2", len(tf.parts))
	}
	if _, ok := tf.parts[0].(*mergeNode); !ok {
		t.Fatalf("parts[0] = %T, want *mergeNode", tf.parts[0])
	}
	if _, ok := tf.parts[1].(*selectBestNode); !ok {
		t.Fatalf("parts[1] = %T, want *selectBestNode", tf.parts[1])
	}
}

func TestParseCommaBuildsTakeAll(t *testing.T) {
	got := mustParse(t, "bv,ba")
	ta, ok := got.(*takeAllNode)
	if !ok || len(ta.parts) != 2 {
		t.Fatalf("Parse(bv,ba) = %#v, want 2-part *takeAllNode", got)
	}
}

func TestParseGroup(t *testing.T) {
	got := mustParse(t, "(bv+ba)/b")
	tf, ok := got.(*takeFirstNode)
	if !ok {
		t.Fatalf("Parse((bv+ba)/b) = %T, want *takeFirstNode", got)
	}
	if _, ok := tf.parts[0].(*mergeNode); !ok {
		t.Fatalf("parts[0] = %T, want *mergeNode (the group's contents)", tf.parts[0])
	}
}

func TestParseFilterIsAttached(t *testing.T) {
	got := mustParse(t, "best[height<=480]")
	sb, ok := got.(*selectBestNode)
	if !ok {
		t.Fatalf("Parse() = %T, want *selectBestNode", got)
	}
	if len(sb.filters()) != 1 {
		t.Fatalf("len(filters) = %d, want 1", len(sb.filters()))
	}
}

func TestParseFilterWithoutSelectorDefaultsToBest(t *testing.T) {
	got := mustParse(t, "[ext=mp4]")
	sb, ok := got.(*selectBestNode)
	if !ok {
		t.Fatalf("Parse([ext=mp4]) = %T, want *selectBestNode", got)
	}
	if sb.what != "" || sb.n != 1 {
		t.Fatalf("Parse([ext=mp4]) = {what:%q n:%d}, want default best()", sb.what, sb.n)
	}
}

func TestParseLiteralFormatID(t *testing.T) {
	got := mustParse(t, "137")
	f, ok := got.(*formatIDNode)
	if !ok || f.selector != "137" {
		t.Fatalf("Parse(137) = %#v, want *formatIDNode{selector:137}", got)
	}
}

func TestParseExtensionLiteralsAreFormatIDs(t *testing.T) {
	for _, ext := range []string{"mp4", "webm", "m4a", "mp3", "mhtml", "aac"} {
		got := mustParse(t, ext)
		if f, ok := got.(*formatIDNode); !ok || f.selector != ext {
			t.Fatalf("Parse(%q) = %#v, want literal formatIDNode", ext, got)
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []string{
		"]",                // unexpected ']'
		"+ba",              // '+' without left operand
		"/ba",              // '/' without left operand
		",ba",              // ',' without left operand
		"best+",            // '+' without right operand
		"best[",            // unterminated filter
		"best[height<=720", // filter never closed
		"best[]",           // empty filter body
		"all.2",            // 'all' combined with n
		"allbest",          // 'all' combined with best/worst
		"all{height}",      // 'all' combined with field
		"mergebest",        // merge of a non-all selector without a field
	}
	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			if _, err := Parse(spec); err == nil {
				t.Fatalf("Parse(%q) should have returned a syntax error", spec)
			}
		})
	}
}

func TestParseEmptySpecIsNil(t *testing.T) {
	n, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if n != nil {
		t.Fatalf("Parse(\"\") = %#v, want nil", n)
	}
}
