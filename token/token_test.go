package token

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		text string
		kind Kind
		ok   bool
	}{
		{text: "ID", kind: ID, ok: true},
		{text: "FN", kind: Fn, ok: true},
		{text: "fn", kind: Fn, ok: true},
		{text: "FUNCTION", kind: Fn, ok: true},
		{text: "return", kind: Return, ok: true},
		{text: "INT", kind: Integer, ok: true},
		{text: "TXT", kind: String, ok: true},
		{text: "(", kind: LeftParen, ok: true},
		{text: "LEFT_BRACES", kind: LeftBrace, ok: true},
		{text: "+", kind: Plus, ok: true},
		{text: "id", ok: false},
		{text: "ERROR", ok: false},
		{text: "<eof>", ok: false},
		{text: "S", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			k, ok := Lookup(tt.text)
			if ok != tt.ok {
				t.Fatalf("unexpected result; want: %v, got: %v", tt.ok, ok)
			}
			if ok && k != tt.kind {
				t.Fatalf("unexpected kind; want: %v, got: %v", tt.kind, k)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	ks := Kinds()
	if len(ks) != int(EOF-ID) {
		t.Fatalf("unexpected kind count; want: %v, got: %v", EOF-ID, len(ks))
	}
	seen := map[string]struct{}{}
	for _, k := range ks {
		if k == Invalid || k == EOF {
			t.Fatalf("%v must not be a lexical kind", k)
		}
		n := k.SnakeName()
		if _, ok := seen[n]; ok {
			t.Fatalf("duplicate snake name: %v", n)
		}
		seen[n] = struct{}{}
		back, ok := LookupSnakeName(n)
		if !ok || back != k {
			t.Fatalf("snake name %v doesn't map back to %v", n, k)
		}
	}
	if r, ok := Fn.Repr(); !ok || r != "fn" {
		t.Fatalf("unexpected repr of FN: %v", r)
	}
	if _, ok := ID.Repr(); ok {
		t.Fatalf("ID must not have a repr")
	}
}
