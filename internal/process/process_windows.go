//go:build windows

package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

func shellArgv(command string) []string {
	return []string{"cmd", "/C", command}
}

func configureProcessGroup(cmd *exec.Cmd) {}

func groupID(pid int) int {
	return 0
}

func startWithPty(c *child, out io.Writer) error {
	return ErrTTYUnsupported
}

func stopProcess(c *child) error {
	if c.cmd.Process == nil {
		return nil
	}
	err := c.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
