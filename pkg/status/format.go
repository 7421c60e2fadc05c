package status

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/walteh/blockreplace/pkg/replace"
)

// Formatter defines how search-and-replace outcomes are rendered for the
// UI layer.
type Formatter interface {
	// FormatReplaceSummary renders the "replaced N of M" summary
	FormatReplaceSummary(res replace.Result) string

	// FormatPosition renders the cursor position indicator
	FormatPosition(cursor, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatReplaceSummary renders the batch outcome. Stale skips are called
// out separately so the user sees why N fell short of M.
func (f *DefaultFormatter) FormatReplaceSummary(res replace.Result) string {
	summary := fmt.Sprintf("replaced %d of %d", res.Replaced, res.Total)
	if res.Stale == 0 {
		return color.New(color.FgGreen).Sprint(summary)
	}
	return color.New(color.FgYellow).Sprintf("%s (%d skipped as stale)", summary, res.Stale)
}

// FormatPosition renders the cursor indicator, 1-based for display.
func (f *DefaultFormatter) FormatPosition(cursor, total int) string {
	if total == 0 {
		return color.New(color.Faint).Sprint("no matches")
	}
	if cursor < 0 {
		return fmt.Sprintf("%d matches", total)
	}
	return fmt.Sprintf("%d/%d", cursor+1, total)
}

// FormatError formats an error message
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return color.New(color.FgRed).Sprintf("error: %v", err)
}
