// Package main hosts the drivesort CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into organize
// runs, undo passes, history queries, device-code logins, and configuration
// scaffolding. It centralizes configuration resolution, drive client wiring,
// and structured logging setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
