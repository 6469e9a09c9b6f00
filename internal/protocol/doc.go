// Package protocol implements the proc-receive side of git's
// receive-pack hook protocol on top of pkt-line frames.
//
// Ownership boundary:
// - version/capability negotiation
// - command batch and push-option parsing
// - report encoding
//
// Parsers only read frames and never touch the repository; every value
// they return has been validated before it can reach a subprocess.
package protocol
