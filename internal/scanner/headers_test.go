package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func runCheck(t *testing.T, check Check, handler http.HandlerFunc) Finding {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return check.Run(context.Background(), ts.Client(), ts.URL)
}

func setHeader(name, value string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if value != "" {
			w.Header().Set(name, value)
		}
	}
}

func TestCSP(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Status
	}{
		{"absent", "", StatusFail},
		{"wildcard default-src", "default-src *", StatusWarn},
		{"wildcard script-src", "default-src 'self'; script-src *", StatusWarn},
		{"strict", "default-src 'self'; script-src 'self'", StatusPass},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := runCheck(t, &CSPCheck{}, setHeader("Content-Security-Policy", tc.header))
			if f.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, f.Status)
			}
		})
	}
}

func TestContentTypeOptions(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Status
	}{
		{"nosniff", "nosniff", StatusPass},
		{"case insensitive", "NoSniff", StatusPass},
		{"absent", "", StatusFail},
		{"other value", "sniff", StatusFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := runCheck(t, &ContentTypeOptionsCheck{}, setHeader("X-Content-Type-Options", tc.header))
			if f.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, f.Status)
			}
		})
	}
}

func TestFraming(t *testing.T) {
	t.Run("frame-ancestors passes", func(t *testing.T) {
		f := runCheck(t, &FramingCheck{}, setHeader("Content-Security-Policy", "frame-ancestors 'none'"))
		if f.Status != StatusPass {
			t.Errorf("expected PASS, got %s", f.Status)
		}
	})
	t.Run("xfo deny passes", func(t *testing.T) {
		f := runCheck(t, &FramingCheck{}, setHeader("X-Frame-Options", "DENY"))
		if f.Status != StatusPass {
			t.Errorf("expected PASS, got %s", f.Status)
		}
	})
	t.Run("xfo odd value warns", func(t *testing.T) {
		f := runCheck(t, &FramingCheck{}, setHeader("X-Frame-Options", "ALLOW-FROM https://evil.example"))
		if f.Status != StatusWarn {
			t.Errorf("expected WARN, got %s", f.Status)
		}
	})
	t.Run("neither fails", func(t *testing.T) {
		f := runCheck(t, &FramingCheck{}, setHeader("X-Nothing", ""))
		if f.Status != StatusFail {
			t.Errorf("expected FAIL, got %s", f.Status)
		}
	})
}

func TestReferrerPolicy(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Status
	}{
		{"absent", "", StatusFail},
		{"safe", "strict-origin-when-cross-origin", StatusPass},
		{"unsafe", "unsafe-url", StatusWarn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := runCheck(t, &ReferrerPolicyCheck{}, setHeader("Referrer-Policy", tc.header))
			if f.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, f.Status)
			}
		})
	}
}

func TestPermissionsPolicy(t *testing.T) {
	t.Run("absent warns with medium confidence", func(t *testing.T) {
		f := runCheck(t, &PermissionsPolicyCheck{}, setHeader("X-Nothing", ""))
		if f.Status != StatusWarn {
			t.Errorf("expected WARN, got %s", f.Status)
		}
		if f.Confidence != ConfidenceMedium {
			t.Errorf("expected medium confidence when absent, got %s", f.Confidence)
		}
	})
	t.Run("present passes", func(t *testing.T) {
		f := runCheck(t, &PermissionsPolicyCheck{}, setHeader("Permissions-Policy", "geolocation=()"))
		if f.Status != StatusPass {
			t.Errorf("expected PASS, got %s", f.Status)
		}
	})
	t.Run("legacy feature-policy counts", func(t *testing.T) {
		f := runCheck(t, &PermissionsPolicyCheck{}, setHeader("Feature-Policy", "geolocation 'none'"))
		if f.Status != StatusPass {
			t.Errorf("expected PASS for legacy header, got %s", f.Status)
		}
	})
}

func TestCacheControl(t *testing.T) {
	htmlHandler := func(cc string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if cc != "" {
				w.Header().Set("Cache-Control", cc)
			}
			_, _ = w.Write([]byte("<html></html>"))
		}
	}

	t.Run("non-html is info", func(t *testing.T) {
		f := runCheck(t, &CacheControlCheck{}, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{}"))
		})
		if f.Status != StatusInfo {
			t.Errorf("expected INFO for non-HTML, got %s", f.Status)
		}
	})
	t.Run("absent warns", func(t *testing.T) {
		f := runCheck(t, &CacheControlCheck{}, htmlHandler(""))
		if f.Status != StatusWarn {
			t.Errorf("expected WARN, got %s", f.Status)
		}
	})
	t.Run("no-store passes", func(t *testing.T) {
		f := runCheck(t, &CacheControlCheck{}, htmlHandler("no-store"))
		if f.Status != StatusPass {
			t.Errorf("expected PASS, got %s", f.Status)
		}
	})
	t.Run("permissive warns", func(t *testing.T) {
		f := runCheck(t, &CacheControlCheck{}, htmlHandler("public, max-age=86400"))
		if f.Status != StatusWarn {
			t.Errorf("expected WARN, got %s", f.Status)
		}
	})
}
