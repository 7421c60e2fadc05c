// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/eligibility"
	"github.com/walteh/blockreplace/pkg/session"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 TypeRules adjusts the allowed-type set. Entries may be doublestar
// glob patterns.
type TypeRules struct {
	Add    []string `json:"add,omitempty" yaml:"add,omitempty"`
	Remove []string `json:"remove,omitempty" yaml:"remove,omitempty"`
}

// 📚 File is the host-facing search configuration: the shortcut binding,
// the case-sensitivity default, and eligibility adjustments.
type File struct {
	Shortcut      string              `json:"shortcut,omitempty" yaml:"shortcut,omitempty"`
	CaseSensitive *bool               `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	Types         TypeRules           `json:"types,omitempty" yaml:"types,omitempty"`
	Fields        map[string][]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading search configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ✅ Validate rejects malformed type and field entries. Unlike
// provider-supplied rules, which are skipped at resolve time, a broken
// config file is a load error.
func (f *File) Validate() error {
	for _, entry := range append(slices.Clone(f.Types.Add), f.Types.Remove...) {
		if entry == "" || !doublestar.ValidatePattern(entry) {
			return errors.Errorf("invalid type pattern %q", entry)
		}
	}
	for typ, names := range f.Fields {
		if typ == "" || !doublestar.ValidatePattern(typ) {
			return errors.Errorf("invalid field scope type %q", typ)
		}
		for _, name := range names {
			if name == "" || !doublestar.ValidatePattern(name) {
				return errors.Errorf("invalid field pattern %q for type %q", name, typ)
			}
		}
	}
	return nil
}

// Provider exposes the file's eligibility adjustments as a rule provider.
func (f *File) Provider() eligibility.Provider {
	return eligibility.ProviderFuncs{
		Types: func(types []string) []string {
			var out []string
			for _, typ := range types {
				if !matchesAny(f.Types.Remove, typ) {
					out = append(out, typ)
				}
			}
			for _, typ := range f.Types.Add {
				if !slices.Contains(out, typ) {
					out = append(out, typ)
				}
			}
			return out
		},
		Fields: func() map[string][]string {
			return f.Fields
		},
	}
}

// Options converts the file into session options.
func (f *File) Options() session.Options {
	opts := session.Options{
		Shortcut:  f.Shortcut,
		Providers: []eligibility.Provider{f.Provider()},
	}
	if f.CaseSensitive != nil {
		opts.CaseSensitive = *f.CaseSensitive
	}
	return opts
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
