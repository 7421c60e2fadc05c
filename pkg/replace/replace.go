// Package replace applies a replacement string to located matches,
// preserving the formatting structure of the rewritten field.
package replace

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/block"
	"github.com/walteh/blockreplace/pkg/match"
)

// ErrStaleMatch is returned when the field text at a match's recorded
// range no longer equals the recorded text. The tree mutated between
// match computation and application; the field is left untouched.
var ErrStaleMatch = errors.New("match is stale")

// Result summarizes a batch replacement. Replaced + Stale <= Total; the
// difference would only show up if the batch aborted on a host error.
type Result struct {
	Replaced int
	Stale    int
	Total    int
}

// ReplaceOne rewrites a single match as one read-verify-write sequence:
// the field is re-read, the recorded range is verified against the
// recorded text, and the spliced value is written back with one SetField
// call. A failed verification returns ErrStaleMatch and writes nothing.
func ReplaceOne(ctx context.Context, host block.Host, m match.Match, replacement string) error {
	value, err := host.GetField(ctx, m.UnitID, m.Field)
	if err != nil {
		return errors.Errorf("reading field %q of unit %q: %w", m.Field, m.UnitID, err)
	}

	runes := []rune(value.PlainText())
	if m.Offset < 0 || m.Offset+m.Length > len(runes) {
		return errors.Errorf("range [%d, %d) no longer exists in field %q of unit %q: %w", m.Offset, m.Offset+m.Length, m.Field, m.UnitID, ErrStaleMatch)
	}
	if current := string(runes[m.Offset : m.Offset+m.Length]); current != m.Text {
		return errors.Errorf("field %q of unit %q now reads %q at the recorded range, expected %q: %w", m.Field, m.UnitID, current, m.Text, ErrStaleMatch)
	}

	next, err := value.Splice(m.Offset, m.Length, replacement)
	if err != nil {
		return errors.Errorf("splicing field %q of unit %q: %w", m.Field, m.UnitID, err)
	}

	if err := host.SetField(ctx, m.UnitID, m.Field, next); err != nil {
		return errors.Errorf("writing field %q of unit %q: %w", m.Field, m.UnitID, err)
	}
	return nil
}

// ReplaceAll applies every match. Within one field matches run in reverse
// offset order so earlier offsets stay valid while later ones are
// rewritten; across fields and units the batch runs forward in document
// order. Stale matches are skipped and counted, never fatal; any other
// host error aborts the batch with the partial result.
func ReplaceAll(ctx context.Context, host block.Host, matches []match.Match, replacement string) (Result, error) {
	logger := zerolog.Ctx(ctx)
	res := Result{Total: len(matches)}

	for _, group := range groupByField(matches) {
		for i := len(group) - 1; i >= 0; i-- {
			err := ReplaceOne(ctx, host, group[i], replacement)
			switch {
			case errors.Is(err, ErrStaleMatch):
				logger.Warn().Str("unit", group[i].UnitID).Str("field", group[i].Field).Int("offset", group[i].Offset).Msg("skipping stale match")
				res.Stale++
			case err != nil:
				return res, errors.Errorf("replacing match %d: %w", group[i].Index, err)
			default:
				res.Replaced++
			}
		}
	}

	logger.Debug().Int("replaced", res.Replaced).Int("stale", res.Stale).Int("total", res.Total).Msg("batch replacement done")
	return res, nil
}

// groupByField splits the match list into per-unit+field runs, keeping
// the document order of first appearance. Matches within a field are
// already ordered by ascending offset.
func groupByField(matches []match.Match) [][]match.Match {
	type key struct{ unit, field string }

	var order []key
	groups := map[key][]match.Match{}
	for _, m := range matches {
		k := key{unit: m.UnitID, field: m.Field}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m)
	}

	out := make([][]match.Match, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}
