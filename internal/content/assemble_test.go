package content

import (
	"errors"
	"testing"
)

func TestAssemble(t *testing.T) {
	skip := []string{"twitter.com", "x.com"}
	tests := []struct {
		name string
		in   *Extracted
		want string
	}{
		{"title only", &Extracted{Title: StringPtr("T")}, "T\n"},
		{"field order", &Extracted{
			Title:   StringPtr("Big Game"),
			Excerpt: StringPtr("summary"),
			Content: StringPtr("body text"),
			Author:  StringPtr("r/sports"),
		}, "Big Game\nr/sports\nsummary\nbody text\n"},
		{"empty fields are skipped", &Extracted{Title: StringPtr(""), Content: StringPtr("body")}, "body\n"},
		{"microblog body dropped", &Extracted{
			Title:   StringPtr("post"),
			Content: StringPtr("login wall"),
			Domain:  StringPtr("mobile.twitter.com"),
		}, "post\n"},
		{"exact microblog domain", &Extracted{
			Excerpt: StringPtr("tweet"),
			Content: StringPtr("noise"),
			Domain:  StringPtr("x.com"),
		}, "tweet\n"},
		{"lookalike domain keeps body", &Extracted{
			Content: StringPtr("real article"),
			Domain:  StringPtr("notx.com"),
		}, "real article\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(tt.in, skip)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble_Failure(t *testing.T) {
	cases := map[string]*Extracted{
		"nil":          nil,
		"all absent":   {},
		"domain only":  {Domain: StringPtr("example.com")},
		"only skipped": {Content: StringPtr("noise"), Domain: StringPtr("twitter.com")},
	}
	for name, in := range cases {
		if _, err := Assemble(in, []string{"twitter.com"}); !errors.Is(err, ErrNothingToAssemble) {
			t.Errorf("%s: err = %v, want ErrNothingToAssemble", name, err)
		}
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain words", "plain words"},
		{"<p>First</p><p>Second &amp; third</p>", "First Second & third"},
		{"<div>keep<script>var x = 1;</script><style>p{}</style></div>", "keep"},
		{"line<br>break", "line break"},
	}
	for _, tt := range tests {
		if got := HTMLToText(tt.in); got != tt.want {
			t.Errorf("HTMLToText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
