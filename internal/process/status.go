package process

import (
	"os"
	"strconv"
)

// Status describes how a command ended.
type Status struct {
	// Code is the exit code, or -1 when the process was ended by a signal.
	Code    int
	Success bool
	text    string
}

func statusFromState(state *os.ProcessState) Status {
	if state == nil {
		return Status{Code: -1, text: "unknown"}
	}
	return Status{
		Code:    state.ExitCode(),
		Success: state.Success(),
		text:    state.String(),
	}
}

func (s Status) String() string {
	if s.text != "" {
		return s.text
	}
	return "exit status " + strconv.Itoa(s.Code)
}
