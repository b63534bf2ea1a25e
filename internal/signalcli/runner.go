// Package signalcli shells out to the signal-cli binary, the only way this
// system speaks the Signal protocol.
package signalcli

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// cliTimeout bounds every signal-cli invocation. Registration, verification
// and send are all short interactive calls; anything longer is stuck.
const cliTimeout = 30 * time.Second

// Result is the structured outcome of one CLI invocation. The CLI failing is
// data, not a Go error — callers branch on ExitCode and TimedOut.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// OK reports whether the invocation completed with a zero exit.
func (r Result) OK() bool { return !r.TimedOut && r.ExitCode == 0 }

// Runner executes one signal-cli invocation against a config directory.
type Runner interface {
	Run(ctx context.Context, configDir string, args ...string) (Result, error)
}

// ExecRunner runs the real binary via os/exec with the fixed timeout.
type ExecRunner struct {
	// Path to the signal-cli binary (or a wrapper script).
	Path string
}

// NewExecRunner creates a runner for the binary at path.
func NewExecRunner(path string) *ExecRunner {
	if path == "" {
		path = "signal-cli"
	}
	return &ExecRunner{Path: path}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, configDir string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, cliTimeout)
	defer cancel()

	argv := append([]string{"--config", configDir}, args...)
	cmd := exec.CommandContext(ctx, r.Path, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		slog.Warn("signalcli: timed out", "args", args[0], "elapsed", elapsed)
		return res, nil
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Binary missing, not executable, etc. — an internal fault, not a
		// CLI outcome.
		return res, err
	}

	slog.Debug("signalcli: completed", "args", args[0], "elapsed", elapsed)
	return res, nil
}
