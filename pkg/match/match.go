// Package match locates query occurrences in flattened field text.
package match

import (
	"context"
	"unicode"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/block"
	"github.com/walteh/blockreplace/pkg/eligibility"
)

// Span is one occurrence within a single text, in rune units against the
// original (unfolded) text.
type Span struct {
	Offset int
	Length int
}

// Match is a located occurrence of the query, scoped to one unit+field.
// Index is the position in document order across the whole match list.
type Match struct {
	UnitID string
	Field  string
	Offset int
	Length int
	Text   string
	Index  int
}

// FindAll scans text for non-overlapping occurrences of query, leftmost
// first, resuming each scan at the end of the previous match. An empty
// query never matches. Case-insensitive comparison folds both sides rune
// by rune, so reported offsets always index the original text.
func FindAll(text, query string, caseSensitive bool) []Span {
	if query == "" {
		return nil
	}

	haystack := []rune(text)
	needle := []rune(query)
	if len(needle) > len(haystack) {
		return nil
	}
	if !caseSensitive {
		haystack = fold(haystack)
		needle = fold(needle)
	}

	var spans []Span
	for i := 0; i+len(needle) <= len(haystack); {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			spans = append(spans, Span{Offset: i, Length: len(needle)})
			i += len(needle)
			continue
		}
		i++
	}
	return spans
}

// Collect walks the document depth-first and returns every match in
// eligible units, fields in declaration order, numbered by document
// order. Missing or non-textual fields scan as empty text.
func Collect(ctx context.Context, host block.Host, rules eligibility.Rules, query string, caseSensitive bool) ([]Match, error) {
	logger := zerolog.Ctx(ctx)

	if query == "" {
		return nil, nil
	}

	units, err := host.ListUnits(ctx)
	if err != nil {
		return nil, errors.Errorf("listing units: %w", err)
	}

	var (
		matches []Match
		walkErr error
	)
	block.Walk(units, func(u *block.Unit) {
		if walkErr != nil || !rules.Eligible(u) {
			return
		}
		for _, field := range rules.FieldsFor(u) {
			value, err := host.GetField(ctx, u.ID, field)
			if err != nil {
				walkErr = errors.Errorf("reading field %q of unit %q: %w", field, u.ID, err)
				return
			}
			text := []rune(value.PlainText())
			for _, span := range FindAll(string(text), query, caseSensitive) {
				matches = append(matches, Match{
					UnitID: u.ID,
					Field:  field,
					Offset: span.Offset,
					Length: span.Length,
					Text:   string(text[span.Offset : span.Offset+span.Length]),
					Index:  len(matches),
				})
			}
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	logger.Debug().Str("query", query).Bool("case_sensitive", caseSensitive).Int("matches", len(matches)).Msg("collected matches")
	return matches, nil
}

// fold lowercases rune-wise, preserving rune count so offsets stay valid.
func fold(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
