// Package types provides shared data structures for the shell service.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - View: Embedded browser view session
//   - NavigationEvent: Single engine callback (ephemeral)
//   - HistoryEntry: One completed navigation
//   - Notice: User-facing message for the renderer
//   - Service: Service provider definition
//   - Tool: Service tool specification
//   - Context: Execution context for operations
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - OpenViewRequest, OpenBatchRequest: Navigation entry points
//   - SaveSnapshotRequest: Session snapshot capture
//
// State Management:
//   - State: View state enum (active, background, closed)
//   - WindowPosition, WindowSize: Window geometry
//   - Stats: View manager statistics
//
// Example Usage:
//
//	view := &types.View{
//	    ID:    string(id.NewViewID()),
//	    URL:   "https://example.com",
//	    State: types.StateActive,
//	}
package types
