package session

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/block"
	"github.com/walteh/blockreplace/pkg/eligibility"
	"github.com/walteh/blockreplace/pkg/match"
	"github.com/walteh/blockreplace/pkg/replace"
)

// DefaultShortcut is the keyboard binding used when neither the options
// nor a hook supply one.
const DefaultShortcut = "Mod+F"

// State is the session's position in its lifecycle.
type State int

const (
	// StateIdle: no query set. Initial state, re-entered when the query
	// clears or the session closes.
	StateIdle State = iota
	// StateSearching: query set, match list computed.
	StateSearching
	// StateReplacingOne: a single replacement is being applied.
	StateReplacingOne
	// StateReplacingAll: a batch replacement is being applied.
	StateReplacingAll
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateReplacingOne:
		return "replacing-one"
	case StateReplacingAll:
		return "replacing-all"
	default:
		return "unknown"
	}
}

// 🔧 Hooks are the ad-hoc filter hooks exposed to external rule
// providers. Each list runs in registration order; for scalar settings
// the last hook wins.
type Hooks struct {
	// Shortcut adjusts the active keyboard binding.
	Shortcut []func(current string) string
	// CaseSensitive adjusts the case-sensitivity default.
	CaseSensitive []func(current bool) bool
}

// 🔧 Options configures a session. The zero value is usable: default
// shortcut, case-insensitive, all text-bearing types in scope.
type Options struct {
	// CaseSensitive is the initial case-sensitivity flag.
	CaseSensitive bool
	// Shortcut is the keyboard binding reported to the UI layer.
	// Defaults to DefaultShortcut.
	Shortcut string
	// Providers adjust search eligibility, in order.
	Providers []eligibility.Provider
	// Hooks adjust scalar settings.
	Hooks Hooks
	// Wait bounds the host availability probe at construction.
	Wait block.WaitOptions
}

// Session is the live state of one search-and-replace interaction. Each
// open search interface owns exactly one Session; it is not safe for
// concurrent use, matching the host's single event loop.
type Session struct {
	host     block.Host
	registry block.TypeRegistry
	opts     Options

	shortcut      string
	query         string
	replacement   string
	caseSensitive bool

	matches []match.Match
	cursor  int
	state   State
}

// 🏭 New creates a session against the host content API. The host must
// answer within the bounded retry window; an unreachable host is a fatal
// initialization error.
func New(ctx context.Context, host block.Host, registry block.TypeRegistry, opts Options) (*Session, error) {
	if host == nil {
		return nil, errors.Errorf("host is required")
	}
	if registry == nil {
		return nil, errors.Errorf("type registry is required")
	}

	if err := block.WaitReady(ctx, host, opts.Wait); err != nil {
		return nil, errors.Errorf("initializing session: %w", err)
	}

	shortcut := opts.Shortcut
	if shortcut == "" {
		shortcut = DefaultShortcut
	}
	for _, hook := range opts.Hooks.Shortcut {
		if next := hook(shortcut); next != "" {
			shortcut = next
		}
	}

	caseSensitive := opts.CaseSensitive
	for _, hook := range opts.Hooks.CaseSensitive {
		caseSensitive = hook(caseSensitive)
	}

	return &Session{
		host:          host,
		registry:      registry,
		opts:          opts,
		shortcut:      shortcut,
		caseSensitive: caseSensitive,
		cursor:        -1,
		state:         StateIdle,
	}, nil
}

// SetQuery updates the query and recomputes the match list. An empty
// query returns the session to idle.
func (s *Session) SetQuery(ctx context.Context, query string) error {
	s.query = query
	return s.recompute(ctx, -1)
}

// SetReplacement updates the replacement text.
func (s *Session) SetReplacement(ctx context.Context, replacement string) error {
	s.replacement = replacement
	// the match list does not depend on the replacement text, but the
	// recompute keeps the cursor honest if content changed underneath
	return s.recompute(ctx, s.cursor)
}

// SetCaseSensitive updates the case flag and recomputes the match list.
func (s *Session) SetCaseSensitive(ctx context.Context, caseSensitive bool) error {
	s.caseSensitive = caseSensitive
	return s.recompute(ctx, -1)
}

// Refresh recomputes the match list after a host content mutation,
// keeping the cursor on the same sequence index where possible.
func (s *Session) Refresh(ctx context.Context) error {
	return s.recompute(ctx, s.cursor)
}

// Next advances the cursor, wrapping from the last match to the first.
// No-op while the match list is empty.
func (s *Session) Next() {
	if len(s.matches) == 0 {
		return
	}
	s.cursor = (s.cursor + 1) % len(s.matches)
}

// Previous retreats the cursor, wrapping from the first match to the
// last. No-op while the match list is empty.
func (s *Session) Previous() {
	if len(s.matches) == 0 {
		return
	}
	s.cursor--
	if s.cursor < 0 {
		s.cursor = len(s.matches) - 1
	}
}

// ReplaceCurrent applies the replacement to the match under the cursor,
// then recomputes, clamping the cursor to the same sequence index. A
// stale match surfaces as replace.ErrStaleMatch after the recompute.
func (s *Session) ReplaceCurrent(ctx context.Context) error {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return errors.Errorf("no match selected")
	}

	s.state = StateReplacingOne
	replaceErr := replace.ReplaceOne(ctx, s.host, s.matches[s.cursor], s.replacement)

	// recompute regardless: on success the content changed, on staleness
	// the match list is provably out of date
	if err := s.recompute(ctx, s.cursor); err != nil {
		return err
	}
	if replaceErr != nil {
		return errors.Errorf("replacing current match: %w", replaceErr)
	}
	return nil
}

// ReplaceAllMatches applies the replacement to every current match and
// recomputes. The cursor lands on -1, or 0 when the replacement text
// itself reintroduced matches of the query. Stale matches are skipped
// and reported in the result, never fatal.
func (s *Session) ReplaceAllMatches(ctx context.Context) (replace.Result, error) {
	s.state = StateReplacingAll
	res, err := replace.ReplaceAll(ctx, s.host, s.matches, s.replacement)
	if err != nil {
		s.state = StateSearching
		return res, errors.Errorf("replacing all matches: %w", err)
	}

	if err := s.recompute(ctx, -1); err != nil {
		return res, err
	}
	return res, nil
}

// Close discards the match list and returns the session to idle.
func (s *Session) Close() {
	s.query = ""
	s.replacement = ""
	s.matches = nil
	s.cursor = -1
	s.state = StateIdle
}

// Query returns the current query string.
func (s *Session) Query() string { return s.query }

// Replacement returns the current replacement string.
func (s *Session) Replacement() string { return s.replacement }

// CaseSensitive returns the current case-sensitivity flag.
func (s *Session) CaseSensitive() bool { return s.caseSensitive }

// Shortcut returns the active keyboard binding for the UI layer.
func (s *Session) Shortcut() string { return s.shortcut }

// MatchCount returns the number of current matches.
func (s *Session) MatchCount() int { return len(s.matches) }

// Cursor returns the current match index, -1 when none is selected.
func (s *Session) Cursor() int { return s.cursor }

// CurrentState returns the session's lifecycle state.
func (s *Session) CurrentState() State { return s.state }

// CurrentMatch returns the match under the cursor, if any.
func (s *Session) CurrentMatch() (match.Match, bool) {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return match.Match{}, false
	}
	return s.matches[s.cursor], true
}

// recompute re-runs the eligibility → extraction → matching pipeline.
// pin >= 0 asks to keep the cursor on that sequence index, clamped to
// the new list; pin < 0 resets to the first match (-1 when empty).
func (s *Session) recompute(ctx context.Context, pin int) error {
	logger := zerolog.Ctx(ctx)

	if s.query == "" {
		s.matches = nil
		s.cursor = -1
		s.state = StateIdle
		return nil
	}

	rules, err := eligibility.Resolve(ctx, s.registry, s.opts.Providers...)
	if err != nil {
		return errors.Errorf("resolving eligibility rules: %w", err)
	}

	matches, err := match.Collect(ctx, s.host, rules, s.query, s.caseSensitive)
	if err != nil {
		return errors.Errorf("computing matches: %w", err)
	}

	s.matches = matches
	switch {
	case len(matches) == 0:
		s.cursor = -1
	case pin >= 0:
		s.cursor = min(pin, len(matches)-1)
	default:
		s.cursor = 0
	}
	s.state = StateSearching

	logger.Debug().Str("query", s.query).Int("matches", len(matches)).Int("cursor", s.cursor).Msg("session recomputed")
	return nil
}
