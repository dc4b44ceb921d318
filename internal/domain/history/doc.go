// Package history records completed navigations.
//
// The store is an in-memory bounded ring behind the Sink interface the
// policy writes to. Entries keep strict append order, duplicates
// included; when the ring is full the oldest entries are dropped and
// counted. Filtering and sorting are presentation concerns and do not
// live here, and neither does durable persistence.
//
// Components:
//   - Store: bounded ring with list/stats/clear
//   - Sink: the one-way interface the policy records through
//   - Export: JSON or CSV dumps, optionally gzipped
package history
