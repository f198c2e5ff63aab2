// Package handoff replaces the orchestration process with the
// long-running application server.
//
// This is the last, irreversible step of startup orchestration: Exec
// never returns on success, and every fault after it belongs to the
// application server. The server invocation has a fixed shape baked in
// at configuration time, not derived at runtime.
package handoff

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// ServerProcess describes the application-server invocation.
type ServerProcess struct {
	// Command is the server executable. Empty means the current binary.
	Command string

	// Bind is the listen address, e.g. "0.0.0.0:3090".
	Bind string

	// Workers is the fixed worker count.
	Workers int

	// GracefulTimeout is the shutdown grace in seconds.
	GracefulTimeout int

	// AccessLog and ErrorLog are log destinations ("-" for stdout/stderr).
	AccessLog string
	ErrorLog  string

	// execFn replaces the process image. Overridable for tests; defaults
	// to unix.Exec.
	execFn func(argv0 string, argv []string, envv []string) error
}

// Argv builds the full argument vector for the server invocation.
func (p *ServerProcess) Argv() []string {
	return []string{
		p.Command,
		"serve",
		"--bind", p.Bind,
		"--workers", fmt.Sprintf("%d", p.Workers),
		"--graceful-timeout", fmt.Sprintf("%d", p.GracefulTimeout),
		"--access-log", p.AccessLog,
		"--error-log", p.ErrorLog,
	}
}

// Exec replaces the current process image with the server. On success it
// never returns; an error means the replacement itself failed and the
// orchestrator is still alive to report it.
func (p *ServerProcess) Exec() error {
	if p.Command == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve own executable: %w", err)
		}
		p.Command = self
	} else {
		path, err := exec.LookPath(p.Command)
		if err != nil {
			return fmt.Errorf("server command not found: %w", err)
		}
		p.Command = path
	}

	execFn := p.execFn
	if execFn == nil {
		execFn = unix.Exec
	}
	return execFn(p.Command, p.Argv(), os.Environ())
}
