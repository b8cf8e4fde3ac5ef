//go:build windows

package elevate

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// IsAdmin returns true if the current process has administrator privileges.
func IsAdmin() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// RunAsAdmin re-launches the current executable through the UAC "runas" verb.
// If the user accepts the prompt the current process exits; if they cancel,
// an error is returned.
func RunAsAdmin() error {
	exe, err := executable()
	if err != nil {
		return err
	}

	quoted := make([]string, len(os.Args)-1)
	for i, a := range os.Args[1:] {
		quoted[i] = windows.EscapeArg(a)
	}

	verb, _ := windows.UTF16PtrFromString("runas")
	file, _ := windows.UTF16PtrFromString(exe)
	params, _ := windows.UTF16PtrFromString(strings.Join(quoted, " "))

	os.Setenv(EnvElevated, "1")
	if err := windows.ShellExecute(0, verb, file, params, nil, windows.SW_NORMAL); err != nil {
		return fmt.Errorf("UAC elevation failed or was cancelled: %w", err)
	}

	os.Exit(0)
	return nil
}
