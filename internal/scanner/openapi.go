package scanner

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
)

// apiDocPaths is the curated list of well-known documentation endpoints.
// Static probes only, no recursion.
var apiDocPaths = []string{
	// OpenAPI/Swagger
	"/openapi.json",
	"/openapi.yaml",
	"/openapi.yml",
	"/api/openapi.json",
	"/api/openapi.yaml",
	"/v3/api-docs", // Springdoc
	"/v3/api-docs.yaml",
	"/swagger.json",
	"/swagger/v1/swagger.json",
	"/swagger-ui",
	"/swagger-ui.html",
	"/swagger/index.html",
	"/api-docs",
	"/api-docs.json",
	// Redoc / framework defaults
	"/redoc",
	"/docs",
	"/docs/swagger.json",
}

// rawSchemaSuffixes mark machine-readable schema endpoints. A reachable raw
// schema leaks the full API surface, which is worse than a rendered docs page.
var rawSchemaSuffixes = []string{
	"openapi.json",
	"swagger.json",
	"v3/api-docs",
	"api-docs",
}

// schemaMarkers are body tokens that identify an OpenAPI/Swagger document.
var schemaMarkers = []string{
	`"openapi"`, "openapi:", `"swagger"`, "swagger:", `"paths"`, `"components"`,
}

const docAccept = "application/json, text/yaml, text/html;q=0.9, */*;q=0.1"

// APIDocsCheck probes well-known documentation paths. A reachable rendered
// docs page warns; a directly reachable raw schema fails.
type APIDocsCheck struct {
	Limiter    *rate.Limiter
	ExtraPaths []string
}

func (c *APIDocsCheck) Key() string   { return "openapi_discovery" }
func (c *APIDocsCheck) Title() string { return "OpenAPI / Swagger Discovery" }

func (c *APIDocsCheck) Run(ctx context.Context, client *http.Client, target string) Finding {
	base := originOnly(target)
	var hits []discoveredItem
	var errs []error

	for _, path := range append(append([]string{}, apiDocPaths...), c.ExtraPaths...) {
		probeURL := joinPath(base, path)
		result, err := twoPhaseProbe(ctx, client, probeURL, docAccept, c.Limiter)
		if err != nil {
			errs = append(errs, probeError(probeURL, err))
			continue
		}
		if !result.Fetched || result.Status != http.StatusOK {
			continue
		}
		if containsSchemaMarker(result.Body) || textLikeContentType(result.ContentType) {
			hits = append(hits, discoveredItem{
				URL:         result.URL,
				Status:      result.Status,
				ContentType: result.ContentType,
				Snippet:     truncate(result.Body, consts.SnippetLimit),
			})
		}
	}

	if len(hits) > 0 {
		rawSchema := false
		for _, h := range hits {
			if isRawSchemaURL(h.URL) {
				rawSchema = true
				break
			}
		}
		status, risk := StatusWarn, RiskLow
		if rawSchema {
			status, risk = StatusFail, RiskMedium
		}
		capped := hits
		if len(capped) > consts.MaxEvidenceItems {
			capped = capped[:consts.MaxEvidenceItems]
		}
		return newFinding(c.Key(), c.Title(), status, risk, ConfidenceHigh,
			Evidence{
				"discovered": capped,
				"note":       "Showing up to 3 matches.",
			},
			"Restrict public access to auto-generated API documentation or schemas. "+
				"Serve docs only to authenticated/dev audiences; avoid leaking internal endpoints and models.")
	}

	if len(errs) > 0 {
		return newFinding(c.Key(), c.Title(), StatusInfo, RiskLow, ConfidenceLow,
			Evidence{"errors_sample": sampledErrors(errs)},
			"No OpenAPI/Swagger docs found; some requests errored (likely blocked).")
	}
	return newFinding(c.Key(), c.Title(), StatusPass, RiskLow, ConfidenceHigh,
		Evidence{"note": "No public OpenAPI/Swagger endpoints discovered."},
		"No public API docs detected at common paths.")
}

func containsSchemaMarker(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range schemaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isRawSchemaURL(probeURL string) bool {
	for _, suffix := range rawSchemaSuffixes {
		if strings.HasSuffix(probeURL, suffix) {
			return true
		}
	}
	return false
}
