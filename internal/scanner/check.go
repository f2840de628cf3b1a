package scanner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/namvh1209/posture-cli/internal/metrics"
)

// Check is an independently runnable heuristic evaluator over one response,
// header, or probe domain. Run must never return an error or panic across
// the boundary: any internal failure is converted into an INFO finding so
// one check can never abort the scan or affect its siblings.
type Check interface {
	// Key returns the stable slug consumers use to correlate findings
	// across runs (e.g. "hsts", "cors").
	Key() string

	// Title returns the human-readable name of the check.
	Title() string

	// Run evaluates the target through the shared client and produces
	// exactly one Finding.
	Run(ctx context.Context, client *http.Client, target string) Finding
}

// Config captures scanner construction options.
type Config struct {
	Timeout         time.Duration
	UserAgent       string
	ProbesPerSecond int      // pacing for discovery probes (0 = default)
	ExtraDocPaths   []string // appended to the API documentation path list
	ExtraArtifacts  []string // appended to the artifact path list
	Logger          *zap.Logger
}

// Scanner owns the shared HTTP client and the ordered check registry. The
// registry is fixed at construction; findings are always emitted in
// registration order regardless of completion order.
type Scanner struct {
	client *http.Client
	checks []Check
	logger *zap.Logger
}

// New builds a scanner with the full check registry. Client construction is
// the only fatal failure mode of a scan; everything downstream degrades to
// per-check INFO findings.
func New(cfg Config) (*Scanner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := NewClient(cfg.Timeout, cfg.UserAgent)

	pps := cfg.ProbesPerSecond
	if pps <= 0 {
		pps = defaultProbesPerSecond
	}
	// One limiter shared by both discovery checks keeps the combined probe
	// rate against the target polite.
	limiter := rate.NewLimiter(rate.Limit(pps), pps)

	return &Scanner{
		client: client,
		logger: logger,
		checks: []Check{
			&HSTSCheck{},
			&CSPCheck{},
			&ContentTypeOptionsCheck{},
			&FramingCheck{},
			&ReferrerPolicyCheck{},
			&PermissionsPolicyCheck{},
			&CacheControlCheck{},
			&CookieFlagsCheck{},
			&CORSCheck{},
			&APIDocsCheck{Limiter: limiter, ExtraPaths: cfg.ExtraDocPaths},
			&ArtifactsCheck{Limiter: limiter, ExtraPaths: cfg.ExtraArtifacts},
		},
	}, nil
}

// Checks exposes the ordered registry, mainly for output formatting and
// tests asserting the findings-length invariant.
func (s *Scanner) Checks() []Check {
	return s.checks
}

// RunScan fans every registered check out concurrently against the target
// and assembles the findings in registry order. Each goroutine writes into
// its own pre-sized slot, so no sorting by completion order is needed. There
// is no early exit: a failing check degrades itself to INFO and its siblings
// run to completion.
func (s *Scanner) RunScan(ctx context.Context, target string) (*Scan, error) {
	normalized, err := ValidateTargetURL(target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	findings := make([]Finding, len(s.checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range s.checks {
		i, c := i, c
		g.Go(func() error {
			findings[i] = s.runIsolated(gctx, c, normalized)
			return nil
		})
	}
	_ = g.Wait() // check goroutines never return errors

	scan := &Scan{
		ID:       generateID("scan"),
		URL:      normalized,
		Score:    ScoreFindings(findings),
		Findings: findings,
	}

	elapsed := time.Since(start)
	metrics.ObserveScan(elapsed.Seconds())
	s.logger.Info("scan_completed",
		zap.String("scan_id", scan.ID),
		zap.String("target", normalized),
		zap.Int("score", scan.Score),
		zap.Int("checks", len(findings)),
		zap.Duration("duration", elapsed),
	)
	return scan, nil
}

// runIsolated is the last line of the failure-isolation contract: checks
// handle their own errors, and a panicking check still contributes exactly
// one INFO finding instead of taking the scan down.
func (s *Scanner) runIsolated(ctx context.Context, c Check, target string) (f Finding) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("check_panicked",
				zap.String("check", c.Key()),
				zap.Any("panic", r),
			)
			f = degradedFinding(c.Key(), c.Title(), fmt.Errorf("check panicked: %v", r),
				"Could not complete this check. Re-run the scan later.")
		}
	}()
	return c.Run(ctx, s.client, target)
}
