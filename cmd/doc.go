// Package cmd implements the command-line interface of oneshot. It provides
// a small command tree for running the server and for probing it.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting and configuring the oneshot server
//   - probe: Commands for running diagnostic test cases and load against a server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See oneshot -help for a list of all commands.
package cmd
