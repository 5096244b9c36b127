package process

import (
	"context"
	"errors"
	"os"
)

var ErrSlotOccupied = errors.New("a command is already running")

// Slot owns at most one running command.
type Slot struct {
	handle Handle
}

func (s *Slot) Empty() bool {
	return s == nil || s.handle == nil
}

// Put stores h. It fails when the slot already holds a command; the previous
// handle must be taken out first.
func (s *Slot) Put(h Handle) error {
	if h == nil {
		return errors.New("nil process handle")
	}
	if s.handle != nil {
		return ErrSlotOccupied
	}
	s.handle = h
	return nil
}

// Peek returns the held handle without releasing it.
func (s *Slot) Peek() Handle {
	if s == nil {
		return nil
	}
	return s.handle
}

// Take releases and returns the held handle.
func (s *Slot) Take() Handle {
	if s == nil {
		return nil
	}
	h := s.handle
	s.handle = nil
	return h
}

// Stop kills and reaps the held command, giving up on reaping when ctx ends.
func (s *Slot) Stop(ctx context.Context) error {
	h := s.Take()
	if h == nil {
		return nil
	}
	killErr := h.Kill()
	if errors.Is(killErr, os.ErrProcessDone) {
		killErr = nil
	}
	select {
	case <-h.Done():
		_, waitErr := h.Wait()
		return errors.Join(killErr, waitErr)
	case <-ctx.Done():
		return errors.Join(killErr, ctx.Err())
	}
}
