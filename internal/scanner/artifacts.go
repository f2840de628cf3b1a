package scanner

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
)

// artifactPaths is the curated list of safe, well-known exposure probes.
// Static presence checks only, no recursion.
var artifactPaths = []string{
	// VCS / secrets
	"/.git/HEAD",
	"/.env",
	"/.htpasswd",
	"/.DS_Store",
	// Status / admin
	"/server-status",
	"/server-info",
	// Backups / listings
	"/backup/",
	"/backups/",
	"/.well-known/security.txt",
	"/.well-known/change-password",
	// Apps / defaults (presence only)
	"/phpinfo.php",
	"/wp-login.php",
	"/actuator",
	"/actuator/health",
}

var sensitiveFilePaths = map[string]bool{
	"/.git/HEAD": true,
	"/.env":      true,
	"/.htpasswd": true,
	"/.DS_Store": true,
}

var statusPagePaths = map[string]bool{
	"/server-status": true,
	"/server-info":   true,
}

var dirListingMarkers = []string{
	"index of /",
	"directory listing for",
	"parent directory",
}

var secretMarkers = []string{
	"database_url", "aws_secret", "password=", "db_password", "secret", "token", "api_key",
}

const artifactAccept = "text/plain, text/html;q=0.9, application/json;q=0.8, */*;q=0.1"

// ArtifactsCheck probes well-known sensitive/status/listing paths. Exposed
// VCS metadata, env/credential files, and directory indexes fail; other
// readable exposures warn.
type ArtifactsCheck struct {
	Limiter    *rate.Limiter
	ExtraPaths []string
}

func (c *ArtifactsCheck) Key() string   { return "artifacts" }
func (c *ArtifactsCheck) Title() string { return "Exposed Artifacts / Directory Indexing" }

func (c *ArtifactsCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	base := originOnly(target)
	var hits []discoveredItem
	var errs []error
	highRisk := false

	for _, path := range append(append([]string{}, artifactPaths...), c.ExtraPaths...) {
		probeURL := joinPath(base, path)
		result, err := twoPhaseProbe(ctx, client, probeURL, artifactAccept, c.Limiter)
		if err != nil {
			errs = append(errs, probeError(probeURL, err))
			continue
		}
		if !result.Fetched || result.Status != http.StatusOK {
			continue
		}

		category := classifyArtifact(path)
		exposed := false
		switch category {
		case "sensitive_file":
			exposed = len(result.Body) > 0
		case "directory":
			exposed = looksLikeDirListing(result.Body)
		case "status_page":
			exposed = true
		default:
			exposed = containsSecretMarker(result.Body)
		}
		if !exposed {
			continue
		}
		if category == "sensitive_file" || category == "directory" {
			highRisk = true
		}
		hits = append(hits, discoveredItem{
			URL:         result.URL,
			Status:      result.Status,
			ContentType: result.ContentType,
			Category:    category,
			Snippet:     truncate(result.Body, consts.SnippetLimit),
		})
	}

	if len(hits) > 0 {
		status, risk := StatusWarn, RiskLow
		if highRisk {
			status, risk = StatusFail, RiskMedium
		}
		capped := hits
		if len(capped) > consts.MaxEvidenceItems {
			capped = capped[:consts.MaxEvidenceItems]
		}
		return newFinding(c.Key(), c.Title(), status, risk, ConfidenceHigh,
			Evidence{
				"discovered": capped,
				"note":       "Showing up to 3 matches. Paths probed are static; no recursion performed.",
			},
			"Restrict public access to sensitive files and directory indexes. "+
				"Disable auto-indexing, remove backup/temporary files, and block /.git and /.env from web root. "+
				"For Apache: Options -Indexes; for Nginx: disable autoindex; move secrets outside the document root.")
	}

	if len(errs) > 0 {
		return newFinding(c.Key(), c.Title(), StatusInfo, RiskLow, ConfidenceLow,
			Evidence{"errors_sample": sampledErrors(errs)},
			"No exposed artifacts detected at common paths; some requests errored (may be blocked).")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
		Evidence{"note": "No common artifacts or indexes found."},
		"No obvious exposures at common paths. Consider deeper, authorized reviews in dev/stage.")
}

func classifyArtifact(path string) string {
	switch {
	case sensitiveFilePaths[path]:
		return "sensitive_file"
	case statusPagePaths[path]:
		return "status_page"
	case strings.HasSuffix(path, "/"):
		return "directory"
	default:
		return "generic"
	}
}

func containsSecretMarker(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range secretMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// looksLikeDirListing combines raw marker matching with a parse of the
// document title, since autoindex pages differ wildly in markup but almost
// always title themselves "Index of /...".
func looksLikeDirListing(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range dirListingMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(documentTitle(doc))), "index of")
}

func documentTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var sb strings.Builder
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				sb.WriteString(child.Data)
			}
		}
		return sb.String()
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if title := documentTitle(child); title != "" {
			return title
		}
	}
	return ""
}
