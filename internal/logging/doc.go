// Package logging provides per-module slog loggers with runtime-adjustable
// levels. Records go to stdout (text or JSON) and, when the daemon runs
// under systemd, to the journal with structured fields.
package logging
