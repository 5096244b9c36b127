package config

import "time"

// Keys shared by the command-line flags and the SAW_* environment variables.
const (
	KeyPath         = "it"
	KeyCommand      = "do"
	KeyClear        = "clear"
	KeyVerbose      = "verbose"
	KeyRestart      = "restart"
	KeyOn           = "on"
	KeyDebounce     = "debounce"
	KeyPollInterval = "poll-interval"
	KeyNoShell      = "no-shell"
	KeyTTY          = "tty"
	KeyKillGrace    = "kill-grace"
	KeyLogFile      = "log-file"
	KeyLogFormat    = "log-format"
	KeyMetricsFile  = "metrics-file"
	KeyPrintConfig  = "print-config"

	EnvPrefix = "SAW"
)

const (
	DefaultDebounce     = 100 * time.Millisecond
	DefaultPollInterval = 100 * time.Millisecond
	DefaultKillGrace    = 2 * time.Second
	DefaultLogFormat    = "text"
)
