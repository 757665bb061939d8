package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("spapi", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("spapi", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("spapi", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestForComponentAttachesField(t *testing.T) {
	base := &capturingLogger{id: "base"}

	logger := ForComponent("spapi", "resources", nil, base)
	tagged, ok := logger.(*capturingLogger)
	if !ok {
		t.Fatalf("expected capturing logger, got %T", logger)
	}
	if tagged.fields["component"] != "resources" {
		t.Fatalf("expected component field, got %#v", tagged.fields)
	}

	tagged.Info("hello", "k", "v")
	if tagged.lastInfo.msg != "hello" || tagged.lastInfo.args[1] != "v" {
		t.Fatalf("expected logged call, got %#v", tagged.lastInfo)
	}
	if len(base.fields) != 0 {
		t.Fatalf("expected base logger fields untouched, got %#v", base.fields)
	}
}

func TestForComponentFallsBackToNop(t *testing.T) {
	if logger := ForComponent("spapi", "", nil, nil); logger == nil {
		t.Fatalf("expected nop logger")
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.FieldsLogger   = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	fields   map[string]any
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *capturingLogger) WithFields(fields map[string]any) glog.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &capturingLogger{id: l.id, fields: merged}
}
