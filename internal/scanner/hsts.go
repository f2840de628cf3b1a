package scanner

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
)

// HSTSCheck verifies that an HTTPS target commits to transport security via
// Strict-Transport-Security with a sufficiently long max-age.
type HSTSCheck struct{}

func (c *HSTSCheck) Key() string   { return "hsts" }
func (c *HSTSCheck) Title() string { return "HTTP Strict-Transport-Security (HSTS)" }

func (c *HSTSCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	u, err := url.Parse(target)
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not parse the target URL. Re-run with a valid absolute URL.")
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskMedium, ConfidenceHigh,
			Evidence{"note": "Requested over HTTP; HSTS applies to HTTPS sites."},
			"Serve the site over HTTPS and enable HSTS with a sufficient max-age. "+
				"Recommended: Strict-Transport-Security: max-age=31536000; includeSubDomains; preload")
	}

	resp, err := fetchHeaders(ctx, client, target, "text/html, */*")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err,
			"Could not verify HSTS due to a network/TLS error. Re-run later or check connectivity.")
	}

	header := strings.TrimSpace(resp.Header.Get("Strict-Transport-Security"))
	if header == "" {
		return newFinding(c.Key(), c.Title(), StatusFail, RiskMedium, ConfidenceHigh,
			Evidence{
				"status_code":     resp.StatusCode,
				"observed_header": "(absent)",
			},
			"Add HSTS. Example: Strict-Transport-Security: max-age=31536000; includeSubDomains; preload")
	}

	evidence := Evidence{"observed_header": header}
	maxAge := parseMaxAge(header)
	if maxAge < consts.HSTSMinMaxAge {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh, evidence,
			"Increase HSTS max-age to at least 15552000 (180d), ideally 31536000 (1y); "+
				"add includeSubDomains and consider preload.")
	}

	lower := strings.ToLower(header)
	if strings.Contains(lower, "includesubdomains") && strings.Contains(lower, "preload") {
		return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh, evidence,
			"HSTS is properly configured with long max-age, includeSubDomains, and preload.")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh, evidence,
		"HSTS present with sufficient max-age. Consider includeSubDomains and preload (if eligible).")
}

// parseMaxAge extracts the max-age directive; malformed values count as 0.
func parseMaxAge(header string) int {
	for _, part := range strings.Split(header, ";") {
		p := strings.ToLower(strings.TrimSpace(part))
		if rest, ok := strings.CutPrefix(p, "max-age="); ok {
			if v, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				return v
			}
		}
	}
	return 0
}
