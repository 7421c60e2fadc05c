// Package eligibility decides which units and fields are in scope for a
// search. Scope is resolved from the host's type registry plus an ordered
// list of rule providers; additions compose by union.
package eligibility

import (
	"context"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/walteh/blockreplace/pkg/block"
)

// Provider adjusts the search scope. Providers run in registration order.
type Provider interface {
	// AdjustTypes returns the adjusted allowed-type list given the list
	// produced so far. Entries may be doublestar glob patterns.
	AdjustTypes(types []string) []string
	// FieldScope restricts matching to specific fields of specific types.
	// Returning nil leaves field scope unchanged. Lists merge by union.
	FieldScope() map[string][]string
}

// ProviderFuncs adapts plain functions to a Provider. Either function may
// be nil.
type ProviderFuncs struct {
	Types  func(types []string) []string
	Fields func() map[string][]string
}

func (p ProviderFuncs) AdjustTypes(types []string) []string {
	if p.Types == nil {
		return types
	}
	return p.Types(types)
}

func (p ProviderFuncs) FieldScope() map[string][]string {
	if p.Fields == nil {
		return nil
	}
	return p.Fields()
}

// Rules is a resolved scope: the effective allowed-type patterns and the
// optional per-type field restriction. Rules are pure data; resolving
// them again against an unchanged registry yields an equal value.
type Rules struct {
	types  []string
	fields map[string][]string
}

// Resolve computes the effective rules. The default allowed-type set is
// every registry type classified as text-bearing; each provider then
// adjusts it in order. Malformed entries (empty names, invalid glob
// patterns) are dropped with a warning, never a failure.
func Resolve(ctx context.Context, registry block.TypeRegistry, providers ...Provider) (Rules, error) {
	logger := zerolog.Ctx(ctx)

	infos, err := registry.ListTypes(ctx)
	if err != nil {
		return Rules{}, err
	}

	var types []string
	for _, info := range infos {
		if info.Category == block.CategoryText {
			types = append(types, info.Name)
		}
	}

	fields := map[string][]string{}
	for _, p := range providers {
		types = sanitize(logger, p.AdjustTypes(slices.Clone(types)))
		for typ, names := range p.FieldScope() {
			if !validPattern(typ) {
				logger.Warn().Str("type", typ).Msg("ignoring malformed field scope entry")
				continue
			}
			merged := fields[typ]
			for _, name := range sanitize(logger, names) {
				if !slices.Contains(merged, name) {
					merged = append(merged, name)
				}
			}
			fields[typ] = merged
		}
	}

	return Rules{types: sanitize(logger, types), fields: fields}, nil
}

// Eligible reports whether the unit's type is in the allowed set.
func (r Rules) Eligible(u *block.Unit) bool {
	for _, pattern := range r.types {
		if patternMatch(pattern, u.Type) {
			return true
		}
	}
	return false
}

// FieldsFor returns the unit's in-scope field names in declaration order.
// If no field scope names the unit's type, every field is in scope.
func (r Rules) FieldsFor(u *block.Unit) []string {
	var patterns []string
	for typ, names := range r.fields {
		if patternMatch(typ, u.Type) {
			patterns = append(patterns, names...)
		}
	}
	if len(patterns) == 0 {
		return u.FieldNames()
	}

	var out []string
	for _, name := range u.FieldNames() {
		for _, pattern := range patterns {
			if patternMatch(pattern, name) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func sanitize(logger *zerolog.Logger, entries []string) []string {
	out := entries[:0]
	for _, e := range entries {
		if !validPattern(e) {
			logger.Warn().Str("entry", e).Msg("ignoring malformed eligibility entry")
			continue
		}
		out = append(out, e)
	}
	return out
}

func validPattern(p string) bool {
	return p != "" && doublestar.ValidatePattern(p)
}

func patternMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
