package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
)

var (
	ErrEmptyCommand   = errors.New("command is empty")
	ErrTTYUnsupported = errors.New("pseudo-terminal runs are not supported on this platform")
)

const (
	DefaultKillGrace = 2 * time.Second
	ptyDrainTimeout  = 100 * time.Millisecond
)

// Handle is a spawned command.
type Handle interface {
	PID() int
	// Poll reports the exit status without blocking; exited is false while
	// the command is still running.
	Poll() (status Status, exited bool, err error)
	// Wait blocks until the command exits.
	Wait() (Status, error)
	// Kill asks the command's process group to stop and forces it after the
	// grace period. It does not reap the process; call Wait afterwards.
	Kill() error
	// Done is closed once the command has exited and been reaped.
	Done() <-chan struct{}
}

// Spawner starts commands. Commands get no stdin; they run in their own
// process group and would be stopped for reading the terminal.
type Spawner struct {
	// Shell runs the command through sh -c (cmd /C on Windows). When false the
	// command is split with shell quoting rules and executed directly.
	Shell bool
	// TTY attaches the command to a pseudo-terminal whose output is copied to
	// Stdout.
	TTY       bool
	KillGrace time.Duration
	Stdout    io.Writer
	Stderr    io.Writer
}

// Spawn starts command and returns its handle.
func (s Spawner) Spawn(command string) (Handle, error) {
	argv, err := s.argv(command)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)

	grace := s.KillGrace
	if grace < 0 {
		grace = 0
	}
	c := &child{
		cmd:   cmd,
		grace: grace,
		done:  make(chan struct{}),
	}

	if s.TTY {
		if err := startWithPty(c, s.stdout()); err != nil {
			return nil, fmt.Errorf("start %q on pty: %w", argv[0], err)
		}
	} else {
		cmd.Stdout = s.stdout()
		cmd.Stderr = s.stderr()
		configureProcessGroup(cmd)
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start %q: %w", argv[0], err)
		}
	}
	c.pgid = groupID(cmd.Process.Pid)

	go c.reap()
	return c, nil
}

func (s Spawner) argv(command string) ([]string, error) {
	if s.Shell {
		return shellArgv(command), nil
	}
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("split command: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

func (s Spawner) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s Spawner) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}

type child struct {
	cmd     *exec.Cmd
	pgid    int
	grace   time.Duration
	done    chan struct{}
	status  Status
	waitErr error

	// pty is set for TTY runs; copied is closed when its output copy ends.
	pty    io.Closer
	copied chan struct{}
}

func (c *child) PID() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

func (c *child) reap() {
	err := c.cmd.Wait()
	c.status = statusFromState(c.cmd.ProcessState)
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		c.waitErr = err
	}
	if c.pty != nil {
		select {
		case <-c.copied:
		case <-time.After(ptyDrainTimeout):
		}
		_ = c.pty.Close()
	}
	close(c.done)
}

func (c *child) Poll() (Status, bool, error) {
	select {
	case <-c.done:
		return c.status, true, c.waitErr
	default:
		return Status{}, false, nil
	}
}

func (c *child) Wait() (Status, error) {
	<-c.done
	return c.status, c.waitErr
}

func (c *child) Done() <-chan struct{} {
	return c.done
}

func (c *child) Kill() error {
	select {
	case <-c.done:
		return os.ErrProcessDone
	default:
	}
	return stopProcess(c)
}
