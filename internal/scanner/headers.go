package scanner

import (
	"context"
	"net/http"
	"strings"
)

// Response-header checks that share the same shape: one GET, inspect one or
// two headers, grade the value.

// CSPCheck flags missing or wildcard Content-Security-Policy headers.
type CSPCheck struct{}

func (c *CSPCheck) Key() string   { return "csp" }
func (c *CSPCheck) Title() string { return "Content-Security-Policy" }

func (c *CSPCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "text/html, */*")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify CSP (network/TLS error).")
	}
	csp := strings.TrimSpace(resp.Header.Get("Content-Security-Policy"))
	if csp == "" {
		return newFinding(c.Key(), c.Title(), StatusFail, RiskMedium, ConfidenceHigh,
			Evidence{"observed_header": "(absent)"},
			"Add a CSP to reduce XSS/injection. Start with strict default-src, scoped script-src/style-src (nonces/hashes).")
	}
	if strings.Contains(csp, "default-src *") || strings.Contains(csp, "script-src *") {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": csp},
			"CSP present but uses wildcards. Replace with 'self', explicit hosts, nonces/hashes.")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
		Evidence{"observed_header": csp},
		"CSP present. Periodically tighten directives.")
}

// ContentTypeOptionsCheck verifies MIME-sniffing protection.
type ContentTypeOptionsCheck struct{}

func (c *ContentTypeOptionsCheck) Key() string   { return "x_content_type_options" }
func (c *ContentTypeOptionsCheck) Title() string { return "X-Content-Type-Options" }

func (c *ContentTypeOptionsCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify X-Content-Type-Options.")
	}
	xcto := resp.Header.Get("X-Content-Type-Options")
	if strings.EqualFold(strings.TrimSpace(xcto), "nosniff") {
		return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": xcto}, "Header correctly set.")
	}
	observed := xcto
	if observed == "" {
		observed = "(absent)"
	}
	return newFinding(c.Key(), c.Title(), StatusFail, RiskLow, ConfidenceHigh,
		Evidence{"observed_header": observed},
		"Add X-Content-Type-Options: nosniff to prevent MIME sniffing.")
}

// FramingCheck accepts either CSP frame-ancestors or a strict X-Frame-Options.
type FramingCheck struct{}

func (c *FramingCheck) Key() string   { return "framing_protection" }
func (c *FramingCheck) Title() string { return "Framing Protection (frame-ancestors / X-Frame-Options)" }

func (c *FramingCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify framing protection.")
	}
	csp := resp.Header.Get("Content-Security-Policy")
	xfo := resp.Header.Get("X-Frame-Options")

	if strings.Contains(strings.ToLower(csp), "frame-ancestors") {
		return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
			Evidence{"csp": csp}, "Framing controlled via CSP frame-ancestors.")
	}
	if xfo != "" {
		switch strings.ToUpper(strings.TrimSpace(xfo)) {
		case "DENY", "SAMEORIGIN":
			return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
				Evidence{"x_frame_options": xfo}, "X-Frame-Options set appropriately.")
		}
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
			Evidence{"x_frame_options": xfo},
			"Prefer SAMEORIGIN or DENY, or use CSP frame-ancestors.")
	}
	return newFinding(c.Key(), c.Title(), StatusFail, RiskLow, ConfidenceHigh,
		Evidence{"csp": "(absent)", "x_frame_options": "(absent)"},
		"Add CSP frame-ancestors (e.g. 'none' or 'self') or X-Frame-Options: SAMEORIGIN/DENY.")
}

// referrerSafeSet lists policies that do not leak full URLs cross-origin.
var referrerSafeSet = map[string]bool{
	"no-referrer":                     true,
	"strict-origin":                   true,
	"strict-origin-when-cross-origin": true,
	"same-origin":                     true,
}

// ReferrerPolicyCheck grades the Referrer-Policy header against a safe set.
type ReferrerPolicyCheck struct{}

func (c *ReferrerPolicyCheck) Key() string   { return "referrer_policy" }
func (c *ReferrerPolicyCheck) Title() string { return "Referrer-Policy" }

func (c *ReferrerPolicyCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify Referrer-Policy.")
	}
	rp := resp.Header.Get("Referrer-Policy")
	if rp == "" {
		return newFinding(c.Key(), c.Title(), StatusFail, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": "(absent)"},
			"Add Referrer-Policy (e.g. 'strict-origin-when-cross-origin') to reduce referrer leakage.")
	}
	if referrerSafeSet[strings.ToLower(strings.TrimSpace(rp))] {
		return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": rp}, "Good Referrer-Policy.")
	}
	return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
		Evidence{"observed_header": rp},
		"Consider 'strict-origin-when-cross-origin' for stronger privacy.")
}

// PermissionsPolicyCheck only ever warns: absence of the header is common
// enough that failing it would drown real issues, hence medium confidence.
type PermissionsPolicyCheck struct{}

func (c *PermissionsPolicyCheck) Key() string   { return "permissions_policy" }
func (c *PermissionsPolicyCheck) Title() string { return "Permissions-Policy" }

func (c *PermissionsPolicyCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify Permissions-Policy.")
	}
	pp := resp.Header.Get("Permissions-Policy")
	if pp == "" {
		// Legacy name still served by some frameworks.
		pp = resp.Header.Get("Feature-Policy")
	}
	if pp == "" {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceMedium,
			Evidence{"observed_header": "(absent)"},
			"Add Permissions-Policy to restrict powerful features (camera, mic, geolocation).")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
		Evidence{"observed_header": pp},
		"Permissions-Policy present. Review directives for least privilege.")
}

// CacheControlCheck only judges HTML responses; anything else is skipped as
// inconclusive rather than graded.
type CacheControlCheck struct{}

func (c *CacheControlCheck) Key() string   { return "cache_control_html" }
func (c *CacheControlCheck) Title() string { return "Cache-Control for HTML" }

func (c *CacheControlCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "text/html, */*")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err, "Could not verify Cache-Control.")
	}
	ctype := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ctype), "text/html") {
		return newFinding(c.Key(), c.Title(), StatusInfo, RiskLow, ConfidenceHigh,
			Evidence{"content_type": ctype}, "Non-HTML response; skipping HTML cache checks.")
	}
	cc := resp.Header.Get("Cache-Control")
	if cc == "" {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": "(absent)"},
			"Set Cache-Control for HTML (e.g. 'no-store' for auth pages or 'private, max-age=...' for user pages).")
	}
	lower := strings.ToLower(cc)
	if strings.Contains(lower, "no-store") || strings.Contains(lower, "private") {
		return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
			Evidence{"observed_header": cc}, "Cache-Control looks appropriate for HTML.")
	}
	return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
		Evidence{"observed_header": cc},
		"Review Cache-Control; avoid long public caching for HTML containing user content.")
}
