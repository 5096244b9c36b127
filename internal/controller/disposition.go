package controller

import (
	"context"
	"errors"
	"os"
	"strconv"

	"saw/internal/logging"
	"saw/internal/process"
	"saw/internal/screen"
)

// reapExited empties the slot when the tracked command has finished.
func (c *Controller) reapExited() {
	handle := c.slot.Peek()
	if handle == nil {
		return
	}
	status, exited, err := handle.Poll()
	if err != nil {
		c.slot.Take()
		c.logger.Error("Error waiting for process: "+err.Error(), pidFields(handle))
		return
	}
	if !exited {
		return
	}
	c.slot.Take()
	c.logExit(handle, status)
}

// dispose makes room for the next run. Restart mode kills the tracked command;
// queue mode waits for it. Only ctx ending is returned as an error.
func (c *Controller) dispose(ctx context.Context) error {
	handle := c.slot.Peek()
	if handle == nil {
		return nil
	}

	if c.restart {
		c.logger.Info("--- Terminating previous process ---", pidFields(handle))
		c.slot.Take()
		c.stats.IncKill()
		if err := handle.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			c.logger.Debug("kill failed", withError(pidFields(handle), err))
		}
		if _, err := handle.Wait(); err != nil {
			c.logger.Debug("wait failed", withError(pidFields(handle), err))
		}
		return nil
	}

	c.logger.Info("--- Waiting for previous process to finish ---", pidFields(handle))
	select {
	case <-handle.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	c.slot.Take()
	status, err := handle.Wait()
	if err != nil {
		c.logger.Error("Error waiting: "+err.Error(), pidFields(handle))
		return nil
	}
	c.logExit(handle, status)
	return nil
}

func (c *Controller) launch() {
	if c.clear {
		screen.Clear(c.screen)
	}
	c.logger.Info("--- Executing: "+c.command+" ---", nil)

	handle, err := c.spawner.Spawn(c.command)
	if err != nil {
		c.stats.IncSpawnFailure()
		c.logger.Error("Failed to start command: "+err.Error(), map[string]string{"error": err.Error()})
		return
	}
	if err := c.slot.Put(handle); err != nil {
		// dispose leaves the slot empty; stop the extra child regardless.
		_ = handle.Kill()
		c.logger.Error("Failed to start command: "+err.Error(), pidFields(handle))
		return
	}
	c.stats.IncLaunch()
	c.logger.Debug("command started", pidFields(handle))
}

func (c *Controller) logExit(handle process.Handle, status process.Status) {
	c.stats.RecordExit(status.Success)
	fields := pidFields(handle)
	fields["exit_code"] = strconv.Itoa(status.Code)
	if status.Success {
		fields[logging.FieldOutcome] = logging.OutcomeSuccess
		c.logger.Info("--- Success ---", fields)
		return
	}
	fields[logging.FieldOutcome] = logging.OutcomeFailure
	c.logger.Info("--- Failed ("+status.String()+") ---", fields)
}

func pidFields(handle process.Handle) map[string]string {
	return map[string]string{"pid": strconv.Itoa(handle.PID())}
}

func withError(fields map[string]string, err error) map[string]string {
	fields["error"] = err.Error()
	return fields
}
