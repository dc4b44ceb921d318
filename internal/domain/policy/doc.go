// Package policy implements per-view navigation interception.
//
// Each embedded view owns one Machine with two states, Idle and
// AuthPending. Every engine callback maps to exactly one transition
// function (OnWillNavigate, OnRedirect, OnNewWindow, OnLoadStart,
// OnLoadFinish, OnLoadFail) returning a Decision the shell acts on.
//
// The rules, in order of user impact:
//   - Popups never open. Auth-related popup URLs load in the current
//     view; everything else is denied with a blocking notice.
//   - Auth-related redirects are forwarded to the current view so the
//     flow stays embedded.
//   - Every completed navigation is appended to the history sink, in
//     arrival order, duplicates included.
//   - Load failures are suppressed while an auth flow is pending and
//     whenever the engine reports an abort; other failures surface as
//     notices while idle.
//
// Events for one view arrive on a single goroutine, so transitions are
// strictly ordered and decisions are deterministic for a given event
// sequence.
//
// AuthPending can optionally expire after Config.PendingTimeout; by
// default flows stay pending until a token-bearing load completes.
package policy
