package http

import (
	"strings"
	"time"
	"unicode"

	"fintrack/internal/core"
)

// Layouts accepted for date inputs: HTML date controls send ISO dates,
// people type the table layout.
var inputDateLayouts = []string{"2006-01-02", core.DateLayout}

// parseDateInput parses a user supplied date in any accepted layout.
func parseDateInput(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range inputDateLayouts {
		d, err := core.ParseDateLayout(s, layout)
		if err == nil {
			return d, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return core.Date{}, firstErr
}

// today returns the current calendar day in the server's zone.
func today() core.Date {
	return core.DateOf(time.Now())
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newline.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
