//go:build !unix

package device

import "os"

// Terminals without SIGWINCH keep the width probed at startup.
func resizeSignals() []os.Signal {
	return nil
}
