// Package cli provides the interactive postbox command-line client.
//
// It wires configuration, the HTTP API client, and an interactive REPL.
// A background watcher pings the server and tracks whether it is online.
//
// Key features:
//   - Register / Login / Logout
//   - List the inbox, optionally only read or unread messages
//   - Read the next unread message
//   - Send a message, delete one by sender or receiver
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
