// Package richtext provides the value type for formatted field content.
package richtext

import (
	"maps"
	"slices"

	"gitlab.com/tozd/go/errors"
)

// Span is a formatting annotation over the rune range [Start, End) of the
// flattened text. Attrs carries the host's formatting attributes opaquely.
type Span struct {
	Start int
	End   int
	Attrs map[string]string
}

// Rich is a plain string plus formatting spans. The zero value is an empty
// string with no formatting. Rich values are treated as immutable: every
// mutation returns a new value.
type Rich struct {
	text  string
	spans []Span
}

// Plain wraps an unformatted string.
func Plain(text string) Rich {
	return Rich{text: text}
}

// New builds a Rich value from text and spans. Span offsets are rune
// offsets into text and must satisfy 0 <= Start <= End <= rune length.
func New(text string, spans []Span) (Rich, error) {
	n := len([]rune(text))
	for i, sp := range spans {
		if sp.Start < 0 || sp.End < sp.Start || sp.End > n {
			return Rich{}, errors.Errorf("span %d: range [%d, %d) out of bounds for text of %d runes", i, sp.Start, sp.End, n)
		}
	}
	return Rich{text: text, spans: cloneSpans(spans)}, nil
}

// PlainText returns the flattened text. Offsets reported elsewhere in this
// module always index this string by rune.
func (r Rich) PlainText() string {
	return r.text
}

// Len returns the rune length of the flattened text.
func (r Rich) Len() int {
	return len([]rune(r.text))
}

// Spans returns a copy of the formatting spans.
func (r Rich) Spans() []Span {
	return cloneSpans(r.spans)
}

// Equal reports whether two values have the same text and the same spans.
func (r Rich) Equal(other Rich) bool {
	if r.text != other.text || len(r.spans) != len(other.spans) {
		return false
	}
	for i, sp := range r.spans {
		o := other.spans[i]
		if sp.Start != o.Start || sp.End != o.End || !maps.Equal(sp.Attrs, o.Attrs) {
			return false
		}
	}
	return true
}

// Splice replaces the rune range [start, start+length) with replacement
// and returns the result. Spans before the range are kept, spans after it
// shift by the length delta, spans fully inside the range are dropped, and
// spans crossing a range boundary are truncated to that boundary. A span
// that encloses the whole range is split into its surviving halves.
func (r Rich) Splice(start, length int, replacement string) (Rich, error) {
	text := []rune(r.text)
	if start < 0 || length < 0 || start+length > len(text) {
		return Rich{}, errors.Errorf("splice range [%d, %d) out of bounds for text of %d runes", start, start+length, len(text))
	}

	end := start + length
	delta := len([]rune(replacement)) - length

	var out []rune
	out = append(out, text[:start]...)
	out = append(out, []rune(replacement)...)
	out = append(out, text[end:]...)

	var spans []Span
	for _, sp := range r.spans {
		switch {
		case sp.End <= start:
			spans = appendSpan(spans, sp.Start, sp.End, sp.Attrs)
		case sp.Start >= end:
			spans = appendSpan(spans, sp.Start+delta, sp.End+delta, sp.Attrs)
		case sp.Start >= start && sp.End <= end:
			// fully inside the replaced range
		case sp.Start < start && sp.End > end:
			spans = appendSpan(spans, sp.Start, start, sp.Attrs)
			spans = appendSpan(spans, end+delta, sp.End+delta, sp.Attrs)
		case sp.Start < start:
			spans = appendSpan(spans, sp.Start, start, sp.Attrs)
		default:
			spans = appendSpan(spans, end+delta, sp.End+delta, sp.Attrs)
		}
	}

	return Rich{text: string(out), spans: spans}, nil
}

// appendSpan adds a span unless truncation emptied it.
func appendSpan(spans []Span, start, end int, attrs map[string]string) []Span {
	if start >= end {
		return spans
	}
	return append(spans, Span{Start: start, End: end, Attrs: maps.Clone(attrs)})
}

func cloneSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	out := slices.Clone(spans)
	for i := range out {
		out[i].Attrs = maps.Clone(out[i].Attrs)
	}
	return out
}
