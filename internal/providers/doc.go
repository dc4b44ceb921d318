// Package providers implements the service provider system for the shell.
//
// Service providers expose shell capabilities to the renderer through a
// standardized tool-based interface. Each provider wraps one domain
// manager and publishes its operations as discoverable tools.
//
// Available Providers:
//   - Views: Open, focus, close, and inspect browser views
//   - Batches: Batch URL submission, probing, and opening
//   - History: Navigation history listing and stats
//   - Policy: Auth classification and rules reload
//   - Settings: Shell settings and preferences
//   - System: Runtime information and renderer log forwarding
//   - Clipboard: OS clipboard access and URL extraction
//
// Provider Interface:
//   - Definition(): Returns service metadata and tool definitions
//   - Execute(): Executes a tool with parameters and context
//
// Example Usage:
//
//	views := views.NewProvider(viewManager)
//	result, err := views.Execute(ctx, "views.open", params, appCtx)
package providers
