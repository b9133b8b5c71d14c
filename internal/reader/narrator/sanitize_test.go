package narrator

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading markers",
			in:   "# Chapter One\n\nSome text.",
			want: "Chapter One\n\nSome text.",
		},
		{
			name: "deep heading",
			in:   "###### Notes\nBody.",
			want: "Notes\nBody.",
		},
		{
			name: "stray hash",
			in:   "She was their #1 fan.",
			want: "She was their 1 fan.",
		},
		{
			name: "bold and italic",
			in:   "Some **bold** and *starred* and _underscored_ words.",
			want: "Some bold and starred and underscored words.",
		},
		{
			name: "fenced code removed",
			in:   "Before\n```\nfmt.Println(42)\n```\nAfter",
			want: "Before\n\nAfter",
		},
		{
			name: "inline code keeps content",
			in:   "Run `go test` now.",
			want: "Run go test now.",
		},
		{
			name: "image removed link unwrapped",
			in:   "See ![diagram](chart.png) and [the docs](https://example.com).",
			want: "See and the docs.",
		},
		{
			name: "horizontal rule",
			in:   "Part one.\n\n---\n\nPart two.",
			want: "Part one.\n\nPart two.",
		},
		{
			name: "list markers",
			in:   "- first\n- second\n1. third",
			want: "first\nsecond\nthird",
		},
		{
			name: "blockquote",
			in:   "> Quoted wisdom here.",
			want: "Quoted wisdom here.",
		},
		{
			name: "stray symbols",
			in:   "odd * stray _ markers ~ here",
			want: "odd stray markers here",
		},
		{
			name: "whitespace collapse",
			in:   "One.\n\n\n\n\nTwo.   Three.",
			want: "One.\n\nTwo. Three.",
		},
		{
			name: "plain prose untouched",
			in:   "Nothing special here. Just sentences.",
			want: "Nothing special here. Just sentences.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeMixedDocument(t *testing.T) {
	in := "## The Storm\n\nThe **wind** rose at _dusk_. See ![map](map.png) or " +
		"[the log](https://example.com/log) for details.\n\n" +
		"- lashed the sails\n- counted the seconds\n\n> Three. Then two."
	want := "The Storm\n\nThe wind rose at dusk. See or " +
		"the log for details.\n\n" +
		"lashed the sails\ncounted the seconds\n\nThree. Then two."

	if got := Sanitize(in); got != want {
		t.Errorf("Sanitize mixed document:\n got %q\nwant %q", got, want)
	}
}

func TestSanitizeLeavesNoSyntaxCharacters(t *testing.T) {
	in := "# Title\n**bold** and *em* and `code` and [link](url) and ![img](url)\n---\n- item\n> quote"

	got := Sanitize(in)
	if strings.ContainsAny(got, "#*_`[]()") {
		t.Errorf("markup characters survived sanitization: %q", got)
	}
	if strings.Contains(got, "---") {
		t.Errorf("horizontal rule survived sanitization: %q", got)
	}
	for _, kept := range []string{"Title", "bold", "em", "code", "link", "item", "quote"} {
		if !strings.Contains(got, kept) {
			t.Errorf("expected %q to survive sanitization, got %q", kept, got)
		}
	}
	if strings.Contains(got, "img") || strings.Contains(got, "url") {
		t.Errorf("image reference should be removed entirely, got %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\n\nSome **bold** prose with [a link](x) and `code`.",
		"Plain prose. No markup at all.",
		"- a list\n- of things\n\n> with a quote",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\n once %q\ntwice %q", in, once, twice)
		}
	}
}
