// Package logging provides structured logging utilities for calbot.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler setup from configuration (level and text/JSON format)
//   - Consistent attribute naming across the codebase
//   - Hashing of user utterances so they can be correlated without being stored
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.check")
//	logger.Info("availability checked",
//	    logging.Status(logging.StatusSuccess))
//
// Never log the raw utterance at info level:
//
//	logger.Info("request received", logging.InputHash(input))
package logging
