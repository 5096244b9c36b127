package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

// FileSink returns a debug-level logfmt sink backed by a size-rotated file,
// and the closer that flushes it.
func FileSink(path string) (Sink, io.Closer) {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
	}
	return Sink{
		Writer:   writer,
		Format:   FormatLogfmt,
		MinLevel: LevelDebug,
	}, writer
}
