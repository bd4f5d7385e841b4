package router

import "sync"

// Navigator tracks the current path. It is shared by the shell, views and
// the session store, and the 401 hook may call it from any goroutine.
type Navigator struct {
	mu      sync.Mutex
	current string
	history []string
}

func NewNavigator(start string) *Navigator {
	return &Navigator{current: start}
}

// Navigate moves to path. Navigating to the current path is a no-op.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if path == n.current {
		return
	}
	n.history = append(n.history, n.current)
	n.current = path
}

// Replace changes the current path without recording history, used for
// redirects.
func (n *Navigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Back returns to the previous path, reporting false when there is none.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return false
	}
	n.current = n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	return true
}
