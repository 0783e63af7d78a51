// Package observability provides structured logging and in-process turn
// metrics for the gateway.
//
// This package implements:
//   - zap logger construction from level and format settings
//   - Request ID propagation into log fields
//   - Per-provider turn counters exposed on the status endpoint
package observability
