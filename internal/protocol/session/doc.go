// Package session runs the client side of one EPP connection.
//
// Ownership boundary:
// - greeting, hello, login and logout sequencing
// - one-command-in-flight dispatch with clTRID correlation
// - session state transitions and the error taxonomy
// - dial, TLS and reconnect backoff primitives
//
// Wire encoding lives in internal/epp and framing in internal/protocol/frame.
package session
