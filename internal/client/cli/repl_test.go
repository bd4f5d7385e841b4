package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	renders int
	calls   []string
}

func (f *fakeExec) Render(context.Context) { f.renders++ }

func (f *fakeExec) Exec(_ context.Context, cmd string, args []string) bool {
	if cmd == "foobar" {
		return false
	}
	f.calls = append(f.calls, strings.Join(append([]string{cmd}, args...), " "))
	return true
}

func (f *fakeExec) Help() string { return "help text" }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesAndRedraws(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"",
		"delete 12",
		"foobar",
		"exit",
		"login",
	}, "\n")
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "(guest /login)" }, rdr(input))

	assert.Equal(t, []string{"login", "delete 12"}, exec.calls)
	// initial draw plus one per known command
	assert.Equal(t, 3, exec.renders)
	assert.Contains(t, *out, "help text")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "mt (guest /login)> ")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\n"))
	assert.Equal(t, []string{"login"}, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("login\n"))
	assert.Empty(t, exec.calls)
	assert.Zero(t, exec.renders)
}
