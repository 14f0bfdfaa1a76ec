package selector

import "testing"

func TestTokenizeGeneralMode(t *testing.T) {
	tk := NewTokenizer("bv*+ba/b")
	var got []string
	for {
		tok, ok := tk.Next()
		if !ok {
			break
		}
		got = append(got, tok.text)
	}
	want := []string{"bv*", "+", "ba", "/", "b"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeFilterBodyIsOpaque(t *testing.T) {
	tk := NewTokenizer("best[height<=720]")
	var got []string
	for {
		tok, ok := tk.Next()
		if !ok {
			break
		}
		got = append(got, tok.text)
	}
	want := []string{"best", "[", "height<=720", "]"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizerRestorePushesBack(t *testing.T) {
	tk := NewTokenizer("a,b")
	first, _ := tk.Next()
	tk.Restore()
	second, _ := tk.Next()
	if first != second {
		t.Fatalf("Restore() did not replay the same token: %+v vs %+v", first, second)
	}
}

func TestPlusOptionalTakesPriorityOverPlus(t *testing.T) {
	tk := NewTokenizer("a+?b")
	tok, _ := tk.Next()
	if tok.text != "a" {
		t.Fatalf("first token = %q, want %q", tok.text, "a")
	}
	tok, _ = tk.Next()
	if tok.text != "+?" {
		t.Fatalf("second token = %q, want %q (longer prefix should win over '+')", tok.text, "+?")
	}
}
