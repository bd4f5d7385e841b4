// Package cli provides the interactive milk tracker command-line client.
//
// It wires configuration, the local token store, the API client with its
// bearer and 401 middlewares, the session store, the route guard and the
// layout observer, then runs a REPL. Each pass of the loop resolves the
// current path through the guard, draws the matching view and dispatches
// one command line.
//
// Global commands:
//   - go <path>, back, refresh
//   - dashboard, herds, milk, profile
//   - layout, logout, help, exit
//
// Everything else is offered by the current view; 'help' lists it.
package cli
