package cli

import (
	"github.com/spf13/pflag"

	"saw/internal/config"
	"saw/internal/watcher"
)

// AddRunFlags registers every saw flag on fs. Values are read back through
// config.NewViper so that SAW_* environment variables apply too.
func AddRunFlags(fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	fs.SortFlags = false
	fs.String(config.KeyPath, "", "`path` to watch, a directory (recursively) or a single file")
	fs.String(config.KeyCommand, "", "shell `command` to run on every change")
	fs.BoolP(config.KeyClear, "c", false, "clear the screen before each run")
	fs.BoolP(config.KeyVerbose, "v", false, "log lifecycle lines")
	fs.BoolP(config.KeyRestart, "r", false, "kill the running command on change instead of waiting for it")
	fs.String(config.KeyOn, watcher.DefaultKinds.String(), "comma separated event `kinds` that trigger a run (create,write,metadata,remove,rename or all)")
	fs.Duration(config.KeyDebounce, config.DefaultDebounce, "quiet window that ends a burst of changes")
	fs.Duration(config.KeyPollInterval, config.DefaultPollInterval, "how often a running command is checked for exit")
	fs.Bool(config.KeyNoShell, false, "split the command and execute it without a shell")
	fs.Bool(config.KeyTTY, false, "run the command on a pseudo-terminal")
	fs.Duration(config.KeyKillGrace, config.DefaultKillGrace, "grace period between SIGTERM and SIGKILL")
	fs.String(config.KeyLogFile, "", "also write diagnostics to a rotated log `file`")
	fs.String(config.KeyLogFormat, config.DefaultLogFormat, "console log `format`: text or logfmt")
	fs.String(config.KeyMetricsFile, "", "write session counters in Prometheus text format to `file` on exit")
	fs.Bool(config.KeyPrintConfig, false, "print the resolved configuration as YAML and exit")
}
