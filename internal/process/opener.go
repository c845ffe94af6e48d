package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrEmptyTarget is returned when Open is called without a path or URL.
var ErrEmptyTarget = errors.New("nothing to open")

// RunFunc executes name with args and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Opener hands files, folders and URLs to the operating system's default
// handler.
type Opener struct {
	goos string
	run  RunFunc
}

// NewOpener returns an Opener for the running OS.
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, run: execRun}
}

// NewOpenerWith returns an Opener for goos that runs commands through run.
func NewOpenerWith(goos string, run RunFunc) *Opener {
	if run == nil {
		run = execRun
	}
	return &Opener{goos: goos, run: run}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Command returns the program and arguments that open target on goos.
func Command(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

func isURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Open opens target, a local path or an http(s) URL, and waits for the
// handler to return. Local paths must exist.
func (o *Opener) Open(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("process: open: %w", ErrEmptyTarget)
	}
	if !isURL(target) {
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("process: open %s: %w", target, err)
		}
	}

	name, args := Command(o.goos, target)
	out, err := o.run(ctx, name, args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return fmt.Errorf("process: open %s: exit %d: %s", target, exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("process: open %s: %w", target, err)
	}
	return nil
}

// OpenAsync opens target without waiting for the handler. Errors are
// reported to onErr when it is non-nil.
func (o *Opener) OpenAsync(ctx context.Context, target string, onErr func(error)) {
	go func() {
		if err := o.Open(ctx, target); err != nil && onErr != nil {
			onErr(err)
		}
	}()
}
