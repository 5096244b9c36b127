package screen

import (
	"bytes"
	"testing"
)

func TestClearWritesEraseAndHome(t *testing.T) {
	var out bytes.Buffer
	Clear(&out)
	if got := out.String(); got != "\x1b[2J\x1b[1;1H" {
		t.Fatalf("unexpected clear sequence %q", got)
	}
}

func TestClearIgnoresNilWriter(t *testing.T) {
	Clear(nil)
}
