package logging

import (
	"io"
	"strings"
	"sync"
	"time"
)

const DefaultBufferSize = 1000

// Sink is one destination for rendered entries.
type Sink struct {
	Writer io.Writer
	Format Format
	// MinLevel overrides the logger level for this sink when set.
	MinLevel Level
}

// Options configures New.
type Options struct {
	Level      Level
	Sinks      []Sink
	BufferSize int
}

type Logger struct {
	shared      *loggerCore
	baseContext map[string]string
}

type loggerCore struct {
	mu       sync.Mutex
	buffer   *LogBuffer
	minLevel Level
	sinks    []Sink
	now      func() time.Time
}

func New(options Options) *Logger {
	size := options.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	sinks := make([]Sink, 0, len(options.Sinks))
	for _, sink := range options.Sinks {
		if sink.Writer == nil {
			continue
		}
		if sink.Format == "" {
			sink.Format = FormatText
		}
		if sink.MinLevel != "" {
			sink.MinLevel = normalizeLevel(sink.MinLevel)
		}
		sinks = append(sinks, sink)
	}
	return &Logger{
		shared: &loggerCore{
			buffer:   NewLogBuffer(size),
			minLevel: normalizeLevel(options.Level),
			sinks:    sinks,
			now:      time.Now,
		},
	}
}

// NewLoggerWithOutput logs logfmt lines to output; a nil output keeps
// entries in memory only.
func NewLoggerWithOutput(minLevel Level, output io.Writer) *Logger {
	options := Options{Level: minLevel}
	if output != nil {
		options.Sinks = []Sink{{Writer: output, Format: FormatLogfmt}}
	}
	return New(options)
}

// Discard returns a logger that only records into its buffer.
func Discard() *Logger {
	return NewLoggerWithOutput(LevelDebug, nil)
}

func (l *Logger) Buffer() *LogBuffer {
	if l == nil || l.shared == nil {
		return nil
	}
	return l.shared.buffer
}

func (l *Logger) With(fields map[string]string) *Logger {
	if l == nil {
		return l
	}
	return &Logger{
		shared:      l.shared,
		baseContext: cloneFields(l.baseContext, fields),
	}
}

// Component tags every entry with the emitting component.
func (l *Logger) Component(name string) *Logger {
	return l.With(map[string]string{FieldComponent: name})
}

func (l *Logger) Debug(message string, fields map[string]string) {
	l.log(LevelDebug, message, fields)
}

func (l *Logger) Info(message string, fields map[string]string) {
	l.log(LevelInfo, message, fields)
}

func (l *Logger) Warn(message string, fields map[string]string) {
	l.log(LevelWarning, message, fields)
}

func (l *Logger) Error(message string, fields map[string]string) {
	l.log(LevelError, message, fields)
}

// Enabled reports whether an entry at level reaches any destination.
func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.shared == nil {
		return false
	}
	if LevelAtLeast(level, l.shared.minLevel) {
		return true
	}
	for _, sink := range l.shared.sinks {
		if sink.MinLevel != "" && LevelAtLeast(level, sink.MinLevel) {
			return true
		}
	}
	return false
}

func (l *Logger) log(level Level, message string, fields map[string]string) {
	if !l.Enabled(level) {
		return
	}
	core := l.shared

	entry := LogEntry{
		Timestamp: core.now().UTC(),
		Level:     level,
		Message:   message,
		Context:   cloneFields(l.baseContext, fields),
	}

	if LevelAtLeast(level, core.minLevel) {
		core.buffer.Add(entry)
	}

	core.mu.Lock()
	defer core.mu.Unlock()
	for _, sink := range core.sinks {
		minLevel := sink.MinLevel
		if minLevel == "" {
			minLevel = core.minLevel
		}
		if !LevelAtLeast(level, minLevel) {
			continue
		}
		_, _ = io.WriteString(sink.Writer, formatEntry(sink.Format, entry)+"\n")
	}
}

func normalizeLevel(level Level) Level {
	switch level {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return level
	default:
		return LevelInfo
	}
}

func levelRank(level Level) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text":
		return FormatText, true
	case "logfmt":
		return FormatLogfmt, true
	default:
		return "", false
	}
}

func LevelAtLeast(level, minLevel Level) bool {
	if minLevel == "" {
		return true
	}
	return levelRank(level) >= levelRank(minLevel)
}

func cloneFields(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	combined := make(map[string]string, len(base)+len(extra))
	for key, value := range base {
		combined[key] = value
	}
	for key, value := range extra {
		combined[key] = value
	}
	return combined
}
