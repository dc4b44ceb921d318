// Package main is the entry point for the URL opener shell service.
//
// The service is the main process of a desktop URL opener: a renderer
// process embeds the webviews and forwards engine callbacks here, while
// this process owns navigation policy, history, batches, snapshots, and
// settings.
//
// Architecture:
//
//	Renderer (webviews) → WebSocket /stream → policy directives
//	                    → REST API          → views, batches, history
//
// The server provides:
//   - REST API for views, batches, history, and snapshots
//   - WebSocket gateway for engine navigation events
//   - Service provider registry for renderer tool calls
//   - Hot-reloaded classifier rules
//   - Rate limiting and metrics
//
// Usage:
//
//	# Production mode
//	./server -port 8090 -data ~/.config/url-opener
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
