package main

const (
	exitCodeSuccess   = 0
	exitCodeUsage     = 1
	exitCodeWatchInit = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
