// Package service provides the tool registry the renderer calls into.
//
// The registry maintains a catalog of provider-backed services and
// routes tool execution. Tool IDs follow the "service.tool" form; the
// registry routes on the service prefix and the provider handles the
// rest.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//   - Free-text discovery with relevance scoring
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(viewsProvider)
//	result, err := registry.Execute(ctx, "views.open", params, appCtx)
package service
