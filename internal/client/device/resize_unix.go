//go:build unix

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

func resizeSignals() []os.Signal {
	return []os.Signal{unix.SIGWINCH}
}
