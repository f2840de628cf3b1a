package scanner

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/namvh1209/posture-cli/internal/metrics"
	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
	sharederrors "github.com/namvh1209/posture-cli/internal/shared/errors"
)

// defaultProbesPerSecond paces discovery probes so two checks walking ~30
// well-known paths stay polite toward the target.
const defaultProbesPerSecond = 8

// probeResult is the outcome of one two-phase path probe.
type probeResult struct {
	URL         string
	Status      int
	ContentType string
	Body        string
	Fetched     bool // whether the content-reading phase ran
}

// discoveredItem is one capped evidence entry for a discovery hit.
type discoveredItem struct {
	URL         string `json:"url"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Category    string `json:"category,omitempty"`
	Snippet     string `json:"snippet"`
}

// twoPhaseProbe issues the cheap HEAD existence probe and, only when the
// response is worth inspecting (success status, or a content type that
// smells like text/JSON/YAML/HTML), follows up with a size-bounded GET to
// classify the hit. Paths answering with a plain not-found/forbidden HEAD
// are skipped without recording anything.
func twoPhaseProbe(ctx context.Context, client *http.Client, target, accept string, limiter *rate.Limiter) (probeResult, error) {
	if err := limiter.Wait(ctx); err != nil {
		return probeResult{}, err
	}
	metrics.IncProbe()
	status, ctype, err := headProbe(ctx, client, target)
	if err != nil {
		return probeResult{}, err
	}
	result := probeResult{URL: target, Status: status, ContentType: ctype}

	if status >= 400 && !textLikeContentType(ctype) {
		return result, nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return probeResult{}, err
	}
	metrics.IncProbe()
	status, ctype, body, err := getPreview(ctx, client, target, accept, consts.BodyPreviewLimit)
	if err != nil {
		return probeResult{}, err
	}
	result.Status = status
	result.ContentType = ctype
	result.Body = body
	result.Fetched = true
	return result, nil
}

// textLikeContentType reports whether a content type suggests a readable
// body worth a follow-up GET. Some servers answer HEAD with non-200 but
// still serve the resource.
func textLikeContentType(ctype string) bool {
	lower := strings.ToLower(ctype)
	for _, t := range []string{"text", "json", "yaml", "html"} {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// sampledErrors formats up to MaxSampledErrors probe failures for evidence.
func sampledErrors(errs []error) []string {
	out := make([]string, 0, consts.MaxSampledErrors)
	for _, err := range errs {
		if len(out) == consts.MaxSampledErrors {
			break
		}
		out = append(out, err.Error())
	}
	return out
}

func probeError(target string, err error) error {
	return fmt.Errorf("%s: %w", target, err)
}

// ExtraPathsFile is the YAML shape operators can supply to extend the
// curated discovery path lists.
type ExtraPathsFile struct {
	APIDocs   []string `yaml:"api_docs"`
	Artifacts []string `yaml:"artifacts"`
}

// LoadExtraPaths reads an operator-supplied YAML file with additional
// discovery paths. Every path must be absolute (leading slash); the curated
// lists stay first so evidence ordering is stable.
func LoadExtraPaths(file string) (ExtraPathsFile, error) {
	var extra ExtraPathsFile
	data, err := os.ReadFile(file)
	if err != nil {
		return extra, fmt.Errorf("read paths file: %w", err)
	}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return extra, fmt.Errorf("%w: %v", sharederrors.ErrInvalidPathsFile, err)
	}
	for _, p := range append(append([]string{}, extra.APIDocs...), extra.Artifacts...) {
		if !strings.HasPrefix(p, "/") {
			return ExtraPathsFile{}, fmt.Errorf("%w: path %q must start with /", sharederrors.ErrInvalidPathsFile, p)
		}
	}
	return extra, nil
}
