package extract

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// ValueFunc turns the first element matched by a strategy into a field
// value. It returns "" when the element carries nothing usable.
type ValueFunc func(sel *goquery.Selection) string

// Strategy is one (locator, transform) lookup for a field.
type Strategy struct {
	Selector string
	Value    ValueFunc
}

// Field resolves one output column from the detail panel using an ordered
// list of strategies. The first non-empty value wins.
type Field struct {
	Name       string
	Strategies []Strategy
}

// Resolve evaluates the strategies in order against root. A strategy that
// fails to compile, matches nothing, or panics yields "" and the next one
// is tried; Resolve itself never panics.
func (f Field) Resolve(root *goquery.Selection) string {
	for i, st := range f.Strategies {
		if v := f.try(root, i, st); v != "" {
			return v
		}
	}
	return ""
}

func (f Field) try(root *goquery.Selection, idx int, st Strategy) (v string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extract: field strategy panicked",
				"field", f.Name, "strategy", idx, "selector", st.Selector, "panic", r)
			v = ""
		}
	}()

	m, err := matcher(st.Selector)
	if err != nil {
		slog.Warn("extract: invalid selector",
			"field", f.Name, "selector", st.Selector, "error", err)
		return ""
	}
	sel := root.FindMatcher(m).First()
	if sel.Length() == 0 {
		return ""
	}
	return st.Value(sel)
}

// Text is a ValueFunc returning the normalised text content.
func Text(sel *goquery.Selection) string {
	return Normalize(sel.Text())
}

// Attr returns a ValueFunc reading attribute name, normalised and then
// passed through transform (which may be nil).
func Attr(name string, transform func(string) string) ValueFunc {
	return func(sel *goquery.Selection) string {
		v, ok := sel.Attr(name)
		if !ok {
			return ""
		}
		v = Normalize(v)
		if transform != nil {
			v = transform(v)
		}
		return v
	}
}

// TextThen returns a ValueFunc applying transform to the normalised text.
func TextThen(transform func(string) string) ValueFunc {
	return func(sel *goquery.Selection) string {
		return transform(Text(sel))
	}
}
