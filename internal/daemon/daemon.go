// Package daemon manages the background tracker process: PID file, detaching
// and service manager notifications.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ChildEnv marks the detached child so it does not fork again.
const ChildEnv = "WORKLOG_DAEMON_CHILD"

// Daemon tracks the single background tracker through its PID file. The
// detached child writes the file once its probes are chosen and removes it
// on the way out; stop and status only read it.
type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// PIDFile returns the path from Daemon.PIDFile in the config.
func (d *Daemon) PIDFile() string {
	return d.pidFile
}

// WritePID records the calling process as the running tracker.
func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	return nil
}

// ReadPID returns 0 when no tracker has recorded itself.
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

// RemovePID tolerates a missing file, since Stop may have removed it first.
func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning checks the recorded process with signal 0 and removes a stale
// PID file.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM to the running tracker. The tracker removes its own PID
// file on the way out; Stop removes it too in case it never gets that far.
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return errors.New("daemon is not running or PID file is stale")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrap(err, "failed to find process")
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = d.RemovePID()
			return errors.New("daemon process already terminated")
		}
		return errors.Wrap(err, "failed to send SIGTERM")
	}

	return d.RemovePID()
}

// IsChild reports whether this process is the detached tracker started by
// Detach. The child logs only to error.log and never detaches again.
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

// Detach re-runs "worklog start" with the same flags as a session leader with
// no standard streams, marking it with ChildEnv, and returns the child PID.
// Readiness of a tracker run under systemd is reported by NotifyReady
// instead; that path uses --foreground and never detaches.
func Detach() (int, error) {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	procAttr := &os.ProcAttr{
		Env:   append(os.Environ(), ChildEnv+"=1"),
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	process, err := os.StartProcess(exe, os.Args, procAttr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start daemon process")
	}
	pid := process.Pid
	_ = process.Release()
	return pid, nil
}
