// Package common holds schema objects shared by every Selling Partner API
// response body.
package common

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-spapi/schema"
)

// Error is one entry of the errors list returned alongside (or instead of) a
// response payload.
type Error struct {
	Code    string  `schema:"code"`
	Message string  `schema:"message"`
	Details *string `schema:"details"`
}

var ErrorShape = schema.Define[Error]("Error", schema.Required("code", "message"))

func (e Error) String() string {
	text := strings.TrimSpace(e.Code + ": " + e.Message)
	if e.Details != nil && strings.TrimSpace(*e.Details) != "" {
		text = fmt.Sprintf("%s (%s)", text, strings.TrimSpace(*e.Details))
	}
	return text
}

// ErrorList is the bare error envelope returned for failed requests.
type ErrorList struct {
	Errors []Error `schema:"errors"`
}

var ErrorListShape = schema.Define[ErrorList]("ErrorList")

// Summary joins every error into a single line.
func (l ErrorList) Summary() string {
	parts := make([]string, 0, len(l.Errors))
	for _, entry := range l.Errors {
		parts = append(parts, entry.String())
	}
	return strings.Join(parts, "; ")
}
