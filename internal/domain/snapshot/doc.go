// Package snapshot provides shell session persistence.
//
// A snapshot captures the set of open views (URL, title, focus, window
// bounds) as a JSON file in the shell data directory, so the desktop
// session can be restored after a restart. History contents are not
// part of a snapshot.
//
// Restoration Process:
//  1. Load snapshot JSON from disk (cache first)
//  2. Close all current views
//  3. Reopen saved views in order
//  4. Map old view IDs to new IDs and restore focus
//
// Example Usage:
//
//	manager := snapshot.NewManager(viewMgr, tree)
//	snap, err := manager.Save("friday-research")
//	err = manager.Restore(snap.ID)
package snapshot
