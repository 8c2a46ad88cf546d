package persist

import "testing"

func TestRelativeKeyGrammar(t *testing.T) {
	cases := []struct {
		name   string
		parent string
		ext    string
		want   string
	}{
		{"empty suffix returns parent", "items", "", "items"},
		{"plain join", "items", "0", "items.0"},
		{"empty parent yields suffix", "", "tags", "tags"},
		{"leading separator appends raw", "npc", ".uuid", "npc.uuid"},
		{"leading separator with empty parent strips it", "", ".uuid", "uuid"},
		{"both empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := relativeKey(tc.parent, tc.ext); got != tc.want {
				t.Fatalf("relativeKey(%q, %q) = %q, want %q", tc.parent, tc.ext, got, tc.want)
			}
		})
	}
}

func TestIndexedKey(t *testing.T) {
	if got := indexedKey("items", 2); got != "items.2" {
		t.Fatalf("indexedKey = %q, want items.2", got)
	}
	if got := indexedKey("", 0); got != "0" {
		t.Fatalf("indexedKey with empty parent = %q, want 0", got)
	}
}
