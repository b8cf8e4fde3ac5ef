package procutil

import (
	"context"
	"errors"
	"os/exec"
)

// Run executes an external command without a console window and returns its
// combined output and exit code. err is only set when the command could not
// be started or waited for; a non-zero exit is reported through exitCode.
func Run(ctx context.Context, name string, args ...string) (out []byte, exitCode int, err error) {
	cmd := HideWindow(exec.CommandContext(ctx, name, args...))
	out, err = cmd.CombinedOutput()
	if err == nil {
		return out, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, exitErr.ExitCode(), nil
	}
	return out, -1, err
}
