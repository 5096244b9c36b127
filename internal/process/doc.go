// Package process spawns the watched command and tracks its lifecycle.
//
// A Handle supports a non-blocking Poll, a blocking Wait, and a best-effort
// Kill. Slot holds at most one Handle; it is the only place the controller
// keeps a running command.
package process
