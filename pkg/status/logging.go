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

package status

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/match"
	"github.com/walteh/blockreplace/pkg/replace"
)

// 📢 UserLogger provides user-friendly feedback about replace operations
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 🔍 LogSearch logs the outcome of a match recomputation
func (u *UserLogger) LogSearch(query string, count int) {
	msg := fmt.Sprintf("%d matches for %q", count, query)
	if count == 0 {
		pterm.Debug.WithPrefix(pterm.Prefix{Text: "🔍"}).Println(msg)
	} else {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍"}).Println(msg)
	}
	u.log.Info().Str("query", query).Int("matches", count).Msg("search")
}

// 📝 LogReplace logs a single replacement outcome
func (u *UserLogger) LogReplace(m match.Match, err error) {
	target := fmt.Sprintf("%s.%s @%d", m.UnitID, m.Field, m.Offset)

	switch {
	case err == nil:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"}).Printf("Replaced %s\n", target)
		u.log.Info().Str("unit", m.UnitID).Str("field", m.Field).Int("offset", m.Offset).Msg("replaced")
	case errors.Is(err, replace.ErrStaleMatch):
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏭️"}).Printf("Skipped %s (content changed)\n", target)
		u.log.Warn().Str("unit", m.UnitID).Str("field", m.Field).Int("offset", m.Offset).Msg("stale match skipped")
	default:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Printf("Failed %s\n", target)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Str("unit", m.UnitID).Str("field", m.Field).Msg("replace failed")
	}
}

// 📊 LogReplaceAll logs a batch replacement summary
func (u *UserLogger) LogReplaceAll(res replace.Result) {
	msg := fmt.Sprintf("Replaced %d of %d", res.Replaced, res.Total)
	if res.Stale > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "📊"}).Printf("%s (%d skipped as stale)\n", msg, res.Stale)
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "📊"}).Println(msg)
	}
	u.log.Info().Int("replaced", res.Replaced).Int("stale", res.Stale).Int("total", res.Total).Msg("replace all")
}
