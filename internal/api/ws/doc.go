// Package ws provides the WebSocket gateway between the shell and the
// renderer's embedded browser engine.
//
// Every engine callback (navigation announcements, redirects, popup
// requests, load results, cookies, window geometry) arrives here as a
// JSON event. Events are routed through the owning view's policy
// machine and the resulting decision goes back out as directives.
//
// Message Types (Renderer → Shell):
//   - will-navigate: Top-level navigation announced
//   - redirect: Server- or meta-redirect reported
//   - new-window-request: Popup or target=_blank requested
//   - load-start / load-finish / load-fail: Load lifecycle
//   - title-changed: Page title update
//   - set-cookie: Cookie reported by the engine
//   - window-moved: Window geometry update
//   - ping: Keep-alive
//
// Message Types (Shell → Renderer):
//   - auth-redirect: Load this URL in the current view
//   - window-denied: Popup cancelled, show the blocking notice
//   - load-url: Load a batch URL in an existing view
//   - open-view: Create a webview for a shell-initiated view
//   - notice: Surface a message to the user
//   - system / pong / error: Connection plumbing
//
// Example Usage:
//
//	gateway := ws.NewGateway(views, batches, logger).WithMetrics(metrics)
//	router.GET("/stream", gateway.HandleConnection)
package ws
