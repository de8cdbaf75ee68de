package gemini

import "testing"

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"stray backticks", "`{\"a\":1}`", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.raw); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSliceJSONObject(t *testing.T) {
	got, ok := sliceJSONObject(`Sure, here you go: {"a": {"b": 1}} hope that helps`)
	if !ok || got != `{"a": {"b": 1}}` {
		t.Fatalf("unexpected slice: %q, %v", got, ok)
	}

	if _, ok := sliceJSONObject("no json here"); ok {
		t.Fatalf("expected no object")
	}
}

func TestSliceJSONArray(t *testing.T) {
	got, ok := sliceJSONArray(`The results are: [1, [2, 3]] as requested`)
	if !ok || got != `[1, [2, 3]]` {
		t.Fatalf("unexpected slice: %q, %v", got, ok)
	}

	if _, ok := sliceJSONArray("{}"); ok {
		t.Fatalf("expected no array")
	}
}
