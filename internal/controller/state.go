package controller

import "time"

// State is Idle while no command is tracked and Running while one is.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// receiveTimeout bounds the wait for the next event. Idle waits without a
// bound; Running wakes up every poll interval to look at the command.
func (s State) receiveTimeout(poll time.Duration) (time.Duration, bool) {
	if s == StateRunning {
		return poll, true
	}
	return 0, false
}
