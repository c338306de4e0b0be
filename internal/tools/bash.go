package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"sync"
	"time"

	"github.com/madenney/walkie-talkie/internal/commandfilter"
)

type bashInput struct {
	Command string `json:"command"`
	Timeout *int   `json:"timeout"`
}

func (e *Executor) bash(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var in bashInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Result{Success: false, Output: fmt.Sprintf("Error: %v", err)}, nil
	}

	timeout := e.CommandTimeout
	if in.Timeout != nil {
		timeout = time.Duration(*in.Timeout) * time.Second
	}

	if blocked, pattern := commandfilter.Check(in.Command, e.BlockedCommands); blocked {
		return &Result{Success: false, Output: fmt.Sprintf("Blocked command pattern: %s", pattern)}, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(runCtx, "/bin/sh", "-c", in.Command)
	cmd.Dir = e.Sandbox.Root

	env := os.Environ()
	if home, err := os.UserHomeDir(); err == nil {
		env = append(env, "HOME="+home)
	}
	cmd.Env = env

	out := newLimitedBuffer(maxOutput + 1)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return &Result{Success: false, Output: fmt.Sprintf("Command timed out after %ds", int(timeout.Seconds()))}, nil
	}

	output := out.String()
	if len(output) > maxOutput {
		output = output[:maxOutput] + "\n... (truncated)"
	}

	exitCode := 0
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	if exitCode != 0 {
		return &Result{Success: false, Output: fmt.Sprintf("Exit code %d\n%s", exitCode, output)}, nil
	}
	return &Result{Success: true, Output: output}, nil
}

// limitedBuffer is a thread-safe append-only buffer that stops growing
// once it reaches max bytes, so a runaway command can't blow up memory
// before the output truncation step even runs.
type limitedBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newLimitedBuffer(max int) *limitedBuffer {
	return &limitedBuffer{max: max}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.buf) >= b.max {
		return len(p), nil
	}
	remaining := b.max - len(b.buf)
	if b.max > 0 && len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(bytes.Clone(b.buf))
}
