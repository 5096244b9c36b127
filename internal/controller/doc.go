// Package controller runs the watch loop: it filters change events, waits for
// a burst of changes to settle, deals with the command that is still running
// and starts the next one.
//
// The controller is single threaded. It owns the process slot and is the only
// reader of the change source.
package controller
