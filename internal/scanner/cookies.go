package scanner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// sessionMarkers flag cookie names that likely carry authentication state.
var sessionMarkers = []string{"sess", "auth", "token", "sid"}

// cookieAttrs is the parsed view of one Set-Cookie header.
type cookieAttrs struct {
	Name     string `json:"name"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httponly"`
	SameSite string `json:"samesite,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// CookieFlagsCheck inspects every Set-Cookie header on an unauthenticated
// response. Session-like cookies missing Secure/HttpOnly (or combining
// SameSite=None with a missing Secure) fail; weaker hygiene on other cookies
// only warns.
type CookieFlagsCheck struct{}

func (c *CookieFlagsCheck) Key() string { return "cookie_flags" }
func (c *CookieFlagsCheck) Title() string {
	return "Cookie Security Flags (Secure / HttpOnly / SameSite)"
}

func (c *CookieFlagsCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	resp, err := fetchHeaders(ctx, client, target, "")
	if err != nil {
		return degradedFinding(c.Key(), c.Title(), err,
			"Could not verify cookie flags due to a network/TLS error.")
	}

	// Header map access keeps every Set-Cookie value; Header.Get would
	// silently drop all but the first cookie.
	raw := resp.Header[http.CanonicalHeaderKey("Set-Cookie")]
	if len(raw) == 0 {
		return newFinding(c.Key(), c.Title(), StatusInfo, RiskLow, ConfidenceHigh,
			Evidence{"note": "No Set-Cookie observed on unauthenticated request."},
			"No session cookies were set. Re-test after login flows or authenticated pages.")
	}

	cookies := parseSetCookieHeaders(raw)
	var fails, warns []string
	details := make(map[string]cookieAttrs, len(cookies))
	for _, ck := range cookies {
		details[ck.Name] = ck
		if !looksLikeSessionCookie(ck.Name) {
			if !ck.Secure {
				warns = append(warns, fmt.Sprintf("%s: missing Secure", ck.Name))
			}
			if !ck.HTTPOnly {
				warns = append(warns, fmt.Sprintf("%s: missing HttpOnly", ck.Name))
			}
			if ck.SameSite == "" {
				warns = append(warns, fmt.Sprintf("%s: missing SameSite", ck.Name))
			}
			continue
		}

		if !ck.Secure {
			fails = append(fails, fmt.Sprintf("%s: missing Secure", ck.Name))
		}
		if !ck.HTTPOnly {
			fails = append(fails, fmt.Sprintf("%s: missing HttpOnly", ck.Name))
		}
		switch {
		case ck.SameSite == "":
			warns = append(warns, fmt.Sprintf("%s: missing SameSite", ck.Name))
		case strings.EqualFold(ck.SameSite, "none") && !ck.Secure:
			fails = append(fails, fmt.Sprintf("%s: SameSite=None without Secure", ck.Name))
		}
	}

	if len(fails) > 0 {
		return newFinding(c.Key(), c.Title(), StatusFail, RiskMedium, ConfidenceHigh,
			Evidence{"cookies": details, "issues": append(fails, warns...)},
			"Set session cookies with Secure and HttpOnly; include SameSite (Lax/Strict). "+
				"If SameSite=None is required for cross-site usage, Secure is mandatory.")
	}
	if len(warns) > 0 {
		return newFinding(c.Key(), c.Title(), StatusWarn, RiskLow, ConfidenceHigh,
			Evidence{"cookies": details, "issues": warns},
			"Harden cookies: add Secure, HttpOnly, and an appropriate SameSite value.")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
		Evidence{"cookies": details}, "Cookie flags look appropriate.")
}

func looksLikeSessionCookie(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sessionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseSetCookieHeaders parses attributes case-insensitively from raw
// Set-Cookie values. A value without a name=value pair is kept as an
// "(unparsed)" entry instead of aborting the check.
func parseSetCookieHeaders(values []string) []cookieAttrs {
	parsed := make([]cookieAttrs, 0, len(values))
	for _, raw := range values {
		parts := strings.Split(raw, ";")
		name, _, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			parsed = append(parsed, cookieAttrs{Name: "(unparsed)", Raw: raw})
			continue
		}
		ck := cookieAttrs{Name: name}
		for _, attr := range parts[1:] {
			attr = strings.TrimSpace(attr)
			switch {
			case strings.EqualFold(attr, "secure"):
				ck.Secure = true
			case strings.EqualFold(attr, "httponly"):
				ck.HTTPOnly = true
			default:
				if k, v, found := strings.Cut(attr, "="); found && strings.EqualFold(strings.TrimSpace(k), "samesite") {
					ck.SameSite = strings.TrimSpace(v)
				}
			}
		}
		parsed = append(parsed, ck)
	}
	return parsed
}
