// Package screen controls the terminal the watched command prints to.
package screen

import (
	"io"

	"github.com/muesli/termenv"
)

// Clear erases the display and moves the cursor to the top-left corner.
func Clear(w io.Writer) {
	if w == nil {
		return
	}
	termenv.NewOutput(w).ClearScreen()
}
