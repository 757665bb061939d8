package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const loggerName = "spapi"

// metricTagKeys are the operation fields promoted to metric tags. Anything
// else, such as scopes, stays in the log record only.
var metricTagKeys = []string{"grant_type", "marketplace_id", "status_code"}

// operationObserver reports LWA grant operations. Callers must not put token
// values or client secrets in the fields they pass.
type operationObserver struct {
	logger          Logger
	metricsRecorder MetricsRecorder
}

func (o operationObserver) observeOperation(ctx context.Context, startedAt time.Time, operation string, err error, fields map[string]any) {
	event := normalizeOperation(operation)
	if event == "" {
		event = "unknown"
	}
	elapsed := time.Since(startedAt)

	outcome, verb := "success", "succeeded"
	if err != nil {
		outcome, verb = "failure", "failed"
	}

	record := cloneFields(fields)
	record["event_type"] = event
	record["status"] = outcome
	record["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		record["error"] = err.Error()
	}

	if o.metricsRecorder != nil {
		tags := map[string]string{"operation": event, "status": outcome}
		for _, key := range metricTagKeys {
			raw, ok := record[key]
			if !ok || raw == nil {
				continue
			}
			if text := strings.TrimSpace(fmt.Sprint(raw)); text != "" {
				tags[key] = text
			}
		}
		o.metricsRecorder.IncCounter(ctx, "spapi."+event+".total", 1, cloneTags(tags))
		o.metricsRecorder.ObserveHistogram(ctx, "spapi."+event+".duration_ms", float64(elapsed.Milliseconds()), cloneTags(tags))
	}

	o.emit(ctx, err != nil, event+" "+verb, record)
}

func (o operationObserver) emit(ctx context.Context, failed bool, message string, record map[string]any) {
	if o.logger == nil {
		return
	}
	logger := o.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	var args []any
	if structured, ok := logger.(FieldsLogger); ok {
		logger = structured.WithFields(record)
	} else {
		args = keyValues(record)
	}
	if failed {
		logger.Error(message, args...)
		return
	}
	logger.Info(message, args...)
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields)+4)
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

// keyValues flattens fields into sorted key/value pairs for loggers without
// structured field support.
func keyValues(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, key, fields[key])
	}
	return pairs
}

func normalizeOperation(operation string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(operation)))
}
