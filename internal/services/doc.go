// Package services defines shared utilities consumed by the poll loop,
// backend client, and announcement sinks.
//
// Key responsibilities:
//   - Context helpers that stamp room IDs, configuration epochs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     consistent classification and an operator hint.
package services
