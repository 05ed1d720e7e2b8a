package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Blue   Bottle\n Coffee ", "Blue Bottle Coffee"},
		{" 66 Mint St", "66 Mint St"},
		{"", ""},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReviewCount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1,204 reviews", "1204"},
		{"1 review", "1"},
		{"87 Reviews", "87"},
		{"Rated 4.5, 12 reviews", "12"},
		{"No reviews", ""},
		{"4.5 stars", ""},
	}
	for _, tt := range tests {
		if got := ReviewCount(tt.in); got != tt.want {
			t.Errorf("ReviewCount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParenCount(t *testing.T) {
	if got := ParenCount("4.6(1,204)"); got != "1204" {
		t.Errorf("ParenCount = %q, want %q", got, "1204")
	}
	if got := ParenCount("4.6"); got != "" {
		t.Errorf("ParenCount = %q, want empty", got)
	}
}

func TestStripPhoneLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Phone: +33 1 42 68 53 00", "+33 1 42 68 53 00"},
		{"PHONE:(415) 555-0100", "(415) 555-0100"},
		{"(415) 555-0100", "(415) 555-0100"},
		{"Phone:", ""},
	}
	for _, tt := range tests {
		if got := StripPhoneLabel(tt.in); got != tt.want {
			t.Errorf("StripPhoneLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestField_ResolveFirstNonEmptyWins(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p class="a"></p><p class="b">second</p><p class="c">third</p>`))
	if err != nil {
		t.Fatal(err)
	}
	f := Field{Name: "demo", Strategies: []Strategy{
		{Selector: "p.missing", Value: Text},
		{Selector: "p.a", Value: Text},
		{Selector: "p.b", Value: Text},
		{Selector: "p.c", Value: Text},
	}}
	if got := f.Resolve(doc.Selection); got != "second" {
		t.Errorf("Resolve = %q, want %q", got, "second")
	}
}

func TestField_ResolveSurvivesBadStrategies(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p class="ok">value</p>`))
	if err != nil {
		t.Fatal(err)
	}
	f := Field{Name: "demo", Strategies: []Strategy{
		{Selector: "p[", Value: Text},
		{Selector: "p.ok", Value: func(*goquery.Selection) string { panic("boom") }},
		{Selector: "p.ok", Value: Text},
	}}
	if got := f.Resolve(doc.Selection); got != "value" {
		t.Errorf("Resolve = %q, want %q", got, "value")
	}
}

func TestField_ResolveAllEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := PhoneField.Resolve(doc.Selection); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}
