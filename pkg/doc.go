// Package pkg provides shared utilities for spicat.
//
// This package contains functionality used by every other package:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors and the typed error taxonomy
//   - Component identifiers for log filtering
//
// # Logging
//
// Logs always go to a diagnostic writer (stderr by default), never to the
// data output stream:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogDebug(pkg.ComponentTransaction, "exchange complete", "index", 1)
//
// # Errors
//
// Failures are reported as one of [InputError], [ConfigError],
// [DeviceError], [TransactionError] or [OutputError], each wrapping a
// sentinel or OS error:
//
//	var txErr *pkg.TransactionError
//	if errors.As(err, &txErr) {
//	    // txErr.Exchange is the 1-based index of the failed exchange
//	}
//	if errors.Is(err, pkg.ErrMalformedHex) {
//	    // Handle bad input
//	}
package pkg
