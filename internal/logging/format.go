package logging

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	debugStyle   = color.New(color.Faint)
	warnStyle    = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen)
	failureStyle = color.New(color.FgRed)
)

func formatEntry(format Format, entry LogEntry) string {
	if format == FormatLogfmt {
		return formatLogfmt(entry)
	}
	return formatText(entry)
}

func formatLogfmt(entry LogEntry) string {
	builder := strings.Builder{}
	builder.WriteString("time=")
	builder.WriteString(entry.Timestamp.Format(time.RFC3339Nano))
	builder.WriteString(" level=")
	builder.WriteString(string(entry.Level))
	builder.WriteString(" msg=")
	builder.WriteString(strconv.Quote(entry.Message))

	for _, key := range sortedKeys(entry.Context) {
		builder.WriteString(" ")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(strconv.Quote(entry.Context[key]))
	}
	return builder.String()
}

// formatText renders the message as the user sees it on the console.
// Fields are printed for debug entries only; internal saw.* fields steer
// coloring and are never printed.
func formatText(entry LogEntry) string {
	builder := strings.Builder{}
	builder.WriteString(entry.Message)
	for _, key := range sortedKeys(entry.Context) {
		if entry.Level != LevelDebug || strings.HasPrefix(key, "saw.") {
			continue
		}
		builder.WriteString(" ")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(entry.Context[key])
	}
	line := builder.String()

	switch entry.Level {
	case LevelDebug:
		return debugStyle.Sprint(line)
	case LevelWarning:
		return warnStyle.Sprint(line)
	case LevelError:
		return errorStyle.Sprint(line)
	}
	switch entry.Context[FieldOutcome] {
	case OutcomeSuccess:
		return successStyle.Sprint(line)
	case OutcomeFailure:
		return failureStyle.Sprint(line)
	}
	return line
}

func sortedKeys(fields map[string]string) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
