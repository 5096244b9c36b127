package logging

import "time"

type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Format selects how a sink renders entries.
type Format string

const (
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
)

type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}

// Field keys with meaning to the text formatter.
const (
	FieldComponent = "saw.component"
	FieldOutcome   = "saw.outcome"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
