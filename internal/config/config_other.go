//go:build !windows

package config

// defaultNetshPath returns the netsh binary name; it is resolved through PATH
// and is normally absent outside Windows, which makes every rule command fail.
func defaultNetshPath() string {
	return "netsh"
}
