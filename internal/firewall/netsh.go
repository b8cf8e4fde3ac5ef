package firewall

import (
	"context"

	"github.com/user/traffic-silencer/internal/procutil"
)

// NetshRunner runs netsh without a console window.
type NetshRunner struct {
	Path string
}

// Run executes netsh with args. Rule mutations need an elevated process.
func (n NetshRunner) Run(ctx context.Context, args ...string) ([]byte, int, error) {
	path := n.Path
	if path == "" {
		path = "netsh"
	}
	return procutil.Run(ctx, path, args...)
}
