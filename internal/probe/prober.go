package probe

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/config"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/tracing"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Prober checks batch URLs before they are opened. Probes run off the
// hot path; navigation interception never waits on them.
type Prober struct {
	client  *Client
	workers int
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// New creates a prober from configuration
func New(cfg config.ProbeConfig, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	return &Prober{
		client:  NewClient(cfg),
		workers: workers,
		logger:  logger,
	}
}

// WithMetrics adds metrics collection
func (p *Prober) WithMetrics(m *monitoring.Metrics) *Prober {
	p.metrics = m
	return p
}

// WithTracer adds span collection per probed URL
func (p *Prober) WithTracer(t *tracing.Tracer) *Prober {
	p.tracer = t
	return p
}

// Run probes urls concurrently with a bounded worker pool. Results
// keep input order; a probe failure becomes an unreachable result,
// never an error for the whole run.
func (p *Prober) Run(ctx context.Context, urls []string) []types.ProbeResult {
	results := make([]types.ProbeResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = p.probe(gctx, url)
			return nil
		})
	}
	g.Wait()

	return results
}

// probe checks one URL and records what it serves
func (p *Prober) probe(ctx context.Context, rawURL string) types.ProbeResult {
	if p.tracer != nil {
		var span *tracing.Span
		span, ctx = p.tracer.StartSpan(ctx, "probe.fetch")
		span.SetTag("url", rawURL)
		defer func() {
			span.Finish()
			p.tracer.Submit(span)
		}()
	}

	start := time.Now()
	result := types.ProbeResult{URL: rawURL}

	resp, err := p.client.Fetch(ctx, rawURL)
	if err != nil {
		result.DurationMS = time.Since(start).Milliseconds()
		msg := err.Error()
		result.Error = &msg
		p.record("error", time.Since(start))
		p.logger.Debug("probe failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return result
	}

	body := p.readBody(resp.RawBody())
	result.DurationMS = time.Since(start).Milliseconds()

	result.StatusCode = resp.StatusCode()
	result.FinalURL = FinalURL(resp)
	result.Hops = Hops(resp)
	result.Reachable = resp.StatusCode() < 400

	content := Extract(body, resp.Header().Get("Content-Type"))
	result.Kind = content.Kind
	result.Title = content.Title
	result.ContentType = content.ContentType
	result.Charset = content.Charset

	outcome := "ok"
	if !result.Reachable {
		outcome = "unreachable"
	}
	p.record(outcome, time.Since(start))

	p.logger.Debug("probe completed",
		zap.String("url", rawURL),
		zap.Int("status", result.StatusCode),
		zap.Int("hops", result.Hops),
		zap.String("kind", string(result.Kind)),
		zap.Int64("duration_ms", result.DurationMS),
	)
	return result
}

// readBody reads up to MaxSniffBytes and closes the stream. A short
// or failed read still yields sniffable bytes.
func (p *Prober) readBody(rc io.ReadCloser) []byte {
	if rc == nil {
		return nil
	}
	defer rc.Close()
	body, _ := io.ReadAll(io.LimitReader(rc, MaxSniffBytes))
	return body
}

func (p *Prober) record(outcome string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordProbe(outcome, duration)
	}
}

// BreakerState exposes the probe circuit state for diagnostics
func (p *Prober) BreakerState() string {
	return p.client.BreakerState().String()
}
