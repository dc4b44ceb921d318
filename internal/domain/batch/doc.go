// Package batch tracks groups of URLs submitted together.
//
// A batch is created from a pasted URL list and opened by dispatching
// each URL to the renderer engine. Items carry per-URL outcomes so the
// UI can show batch progress.
//
// Components:
//   - Manager: Batch lifecycle and per-item status
//   - Dispatcher: Bridge to the view layer and engine
//   - Fingerprint-based duplicate detection
//
// Item Lifecycle:
//  1. pending: submitted, not yet dispatched
//  2. unreachable: preflight probe failed
//  3. opened: dispatched to a view
//  4. skipped: left behind at open time (probe said unreachable)
//
// Example Usage:
//
//	manager := batch.NewManager(dispatcher)
//	b, err := manager.Submit(urls, batch.SubmitOptions{Note: "research"})
//	b, err = manager.Open(b.ID, nil)
package batch
