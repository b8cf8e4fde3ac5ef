//go:build windows

package config

// defaultNetshPath returns the netsh binary used for firewall rule commands.
func defaultNetshPath() string {
	return `C:\Windows\System32\netsh.exe`
}
