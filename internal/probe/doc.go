// Package probe implements the preflight checker for batch URLs.
//
// Before a batch is opened, each URL can be probed to learn whether it
// is reachable, where its redirects land, and what it serves. Results
// attach to the batch so unreachable URLs are skipped at open time.
// The probe never sits on the navigation hot path.
//
// Components:
//   - Client: resty HTTP client over a retryable transport, with a
//     token-bucket rate limiter and a circuit breaker
//   - Extract: content kind sniffing plus title extraction with
//     charset-detected decoding and sanitization
//   - Prober: bounded worker pool that fans URLs out and preserves
//     input order
//
// Example Usage:
//
//	prober := probe.New(cfg.Probe, logger).WithMetrics(metrics)
//	results := prober.Run(ctx, []string{"https://example.com/a", "https://example.com/b"})
//	batches.AttachProbe(batchID, results)
package probe
