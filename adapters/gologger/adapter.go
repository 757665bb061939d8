package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ForComponent resolves the named logger and tags it with a component field
// when the logger supports structured fields.
func ForComponent(
	name string,
	component string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) glog.Logger {
	_, resolved := Resolve(name, provider, logger)
	resolved = glog.Ensure(resolved)
	component = strings.TrimSpace(component)
	if component == "" {
		return resolved
	}
	if fieldsLogger, ok := resolved.(glog.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{"component": component})
	}
	return resolved
}
