package scanner

import (
	"context"
	"net/http"
	"strings"
)

// CORSCheck passively grades Access-Control-* headers on the target
// response. The one hard failure is the classic dangerous combination:
// wildcard origin together with credentials allowed.
type CORSCheck struct{}

func (c *CORSCheck) Key() string   { return "cors" }
func (c *CORSCheck) Title() string { return "CORS Configuration (Access-Control-Allow-*)" }

func (c *CORSCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err,
			"Could not verify CORS due to a network/TLS error.")
	}

	acao := resp.Header.Get("Access-Control-Allow-Origin")
	acac := resp.Header.Get("Access-Control-Allow-Credentials")
	vary := resp.Header.Get("Vary")
	observed := Evidence{
		"observed_headers": map[string]string{
			"access-control-allow-origin":      acao,
			"access-control-allow-credentials": acac,
			"vary":                             vary,
		},
	}
	credentials := strings.EqualFold(strings.TrimSpace(acac), "true")

	switch {
	case acao == "" && acac == "":
		return newFinding(c.Key(), c.Title(), StatusInfo, RiskLow, ConfidenceHigh, observed,
			"No CORS headers observed on this route. That's fine unless the endpoint is intended for cross-site AJAX.")
	case acao == "*" && credentials:
		return newFinding(c.Key(), c.Title(), StatusFail, RiskMedium, ConfidenceHigh, observed,
			"Risky CORS: Access-Control-Allow-Origin: * with credentials allowed. "+
				"Set a specific origin and ensure Vary: Origin is present.")
	case acao == "*":
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh, observed,
			"CORS allows any origin. Prefer a specific allowlist; add Vary: Origin when origin reflection is used.")
	case credentials && (acao == "" || strings.EqualFold(acao, "null")):
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh, observed,
			"Credentials allowed but Access-Control-Allow-Origin is missing/unsafe. "+
				"Use an explicit origin and Vary: Origin.")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh, observed,
		"CORS on this route looks reasonable. Validate preflight/other routes in deeper scans.")
}
