package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	// Render draws the screen for the current path.
	Render(ctx context.Context)
	// Exec runs a command and reports whether it was known.
	Exec(ctx context.Context, cmd string, args []string) bool
	Help() string
}

// runREPL starts the read–eval–print loop of the milk tracker CLI.
//
// The current screen is drawn, then a line is read and its first token is
// dispatched to a. The screen is redrawn after every known command. The
// loop exits on EOF, on context cancellation, or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	redraw := true
	for {
		if ctx.Err() != nil {
			return
		}
		if redraw {
			a.Render(ctx)
		}
		redraw = false

		printlnFn(fmt.Sprintf("mt %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(a.Help())

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if a.Exec(ctx, cmd, args) {
				redraw = true
			} else {
				printlnFn("Unknown command:", cmd)
			}
		}
	}
}
