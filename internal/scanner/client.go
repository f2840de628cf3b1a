package scanner

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
	sharederrors "github.com/namvh1209/posture-cli/internal/shared/errors"
)

// DefaultUserAgent identifies the scanner on every probe. An unsolicited
// scanner must be attributable, so the string names the project and a
// contact URL.
const DefaultUserAgent = "posture-cli/0.3 (+https://github.com/namvh1209/posture-cli; passive posture scan)"

// NewClient builds the shared HTTP client every check probes through:
// connect timeout, overall timeout, TLS verification on, redirects followed,
// and the identifying User-Agent stamped onto each request. All checks share
// one instance; nothing mutates it after construction.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = consts.HTTPTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: consts.HTTPConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: consts.HTTPConnectTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: false},
		MaxIdleConnsPerHost: 4,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      transport,
			userAgent: userAgent,
		},
	}
}

// userAgentTransport stamps the scanner identity and a default Accept header
// onto every outgoing probe.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}
	return t.base.RoundTrip(req)
}

// ValidateTargetURL checks that raw is a well-formed absolute http/https URL
// and returns it normalized. Called at the API and CLI boundaries before any
// scan work begins.
func ValidateTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", sharederrors.ErrEmptyTarget
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", sharederrors.ErrInvalidTargetURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", sharederrors.ErrInvalidTargetURL
	}
	return u.String(), nil
}

// originOnly strips path, query, and fragment, returning scheme://host/ for
// discovery probes that walk well-known paths from the site root.
func originOnly(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	u.Path = "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func joinPath(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// fetchHeaders issues a GET and returns the response with its body drained
// and closed. Callers inspect status and headers only.
func fetchHeaders(ctx context.Context, client *http.Client, target, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.BodyPreviewLimit))
	return resp, nil
}

// headProbe is the cheap existence probe of discovery checks.
func headProbe(ctx context.Context, client *http.Client, target string) (status int, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

// getPreview issues a GET and reads at most limit bytes of the body for
// classification. The connection is closed afterwards; a partial read is
// acceptable evidence.
func getPreview(ctx context.Context, client *http.Client, target, accept string, limit int) (status int, contentType, body string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, "", "", err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, int64(limit)))
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(preview), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
