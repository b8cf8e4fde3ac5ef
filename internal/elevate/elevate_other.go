//go:build !windows

package elevate

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
)

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// RunAsAdmin re-launches the current executable with root privileges. macOS
// shows the native authorization dialog, Linux tries pkexec; both fall back
// to sudo, which replaces the current process.
func RunAsAdmin() error {
	exe, err := executable()
	if err != nil {
		return err
	}
	args := os.Args[1:]
	os.Setenv(EnvElevated, "1")

	switch runtime.GOOS {
	case "darwin":
		if path, err := exec.LookPath("osascript"); err == nil {
			cmd := exec.Command(path, "-e", appleScript(exe, args))
			cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
			if err := cmd.Start(); err == nil {
				os.Exit(0)
			}
		}
	default:
		if path, err := exec.LookPath("pkexec"); err == nil {
			cmd := exec.Command(path, append([]string{"env", EnvElevated + "=1", exe}, args...)...)
			cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
			if err := cmd.Start(); err == nil {
				os.Exit(0)
			}
		}
	}

	sudoPath, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("no elevation helper found; please run as root")
	}
	return syscall.Exec(sudoPath, append([]string{"sudo", "--preserve-env=" + EnvElevated, exe}, args...), os.Environ())
}

// appleScript builds a "do shell script" command running exe with args.
func appleScript(exe string, args []string) string {
	parts := []string{EnvElevated + "=1", shellQuote(exe)}
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return fmt.Sprintf(`do shell script "%s" with administrator privileges`, escapeAppleScript(strings.Join(parts, " ")))
}

// shellQuote wraps a string in single quotes for shell usage.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// escapeAppleScript escapes a string for use inside an AppleScript double-quoted string.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
