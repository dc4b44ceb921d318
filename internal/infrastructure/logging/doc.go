// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// A rolling file sink (lumberjack) can be added next to stdout by
// setting Config.File; rotated files are gzip-compressed.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8090"))
//	logger.Error("Failed to bind", zap.Error(err))
package logging
