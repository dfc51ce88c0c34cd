// Package logging provides structured logging utilities for roomutil.
//
// All components log through log/slog. This package keeps attribute names
// consistent across the codebase and builds the process-wide handler from
// the --log-level and --log-format flags.
//
// # Usage Patterns
//
// Create a logger scoped to an operation:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.list")
//	logger.Info("grabbing data for room",
//	    logging.Room(room.Name),
//	    logging.Status(logging.StatusSuccess))
//
// Tokens are never logged directly; use SanitizeToken.
package logging
