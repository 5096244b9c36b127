//go:build !windows

package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

func shellArgv(command string) []string {
	return []string{"sh", "-c", command}
}

// configureProcessGroup puts the command in its own process group so a kill
// also reaches everything the shell started.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	setDeathSignal(cmd.SysProcAttr)
}

func groupID(pid int) int {
	if pid <= 0 {
		return 0
	}
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return 0
	}
	return pgid
}

// startWithPty starts the command as a session leader on a new
// pseudo-terminal and copies its output to out.
func startWithPty(c *child, out io.Writer) error {
	c.cmd.SysProcAttr = &syscall.SysProcAttr{}
	setDeathSignal(c.cmd.SysProcAttr)
	ptmx, err := pty.Start(c.cmd)
	if err != nil {
		return err
	}
	_ = pty.InheritSize(os.Stdin, ptmx)

	c.pty = ptmx
	c.copied = make(chan struct{})
	go func() {
		defer close(c.copied)
		_, _ = io.Copy(out, ptmx)
	}()
	return nil
}

func stopProcess(c *child) error {
	if c.grace <= 0 {
		return ignoreMissing(signalGroup(c, unix.SIGKILL))
	}
	termErr := ignoreMissing(signalGroup(c, unix.SIGTERM))
	select {
	case <-c.done:
		return termErr
	case <-time.After(c.grace):
	}
	killErr := ignoreMissing(signalGroup(c, unix.SIGKILL))
	return errors.Join(termErr, killErr)
}

func signalGroup(c *child, sig syscall.Signal) error {
	target := c.PID()
	if target <= 0 {
		return nil
	}
	if c.pgid > 0 {
		target = -c.pgid
	}
	return unix.Kill(target, sig)
}

func ignoreMissing(err error) error {
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
