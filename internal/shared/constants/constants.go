package constants

import "time"

const (
	// HTTPTimeout is the overall budget for a single probe, including body read.
	HTTPTimeout = 10 * time.Second
	// HTTPConnectTimeout bounds connection establishment separately from the
	// overall budget so dead hosts fail fast.
	HTTPConnectTimeout = 5 * time.Second
)

// HSTSMinMaxAge is the minimum acceptable max-age (180 days) before an HSTS
// header is considered too short-lived.
const HSTSMinMaxAge = 15552000

const (
	// BodyPreviewLimit caps how many bytes of a probed body are read when
	// classifying a discovery hit.
	BodyPreviewLimit = 600
	// SnippetLimit caps how many characters of a body preview end up in
	// finding evidence.
	SnippetLimit = 300
	// MaxEvidenceItems caps discovered entries recorded per finding.
	MaxEvidenceItems = 3
	// MaxSampledErrors caps probe errors recorded per discovery finding.
	MaxSampledErrors = 2
)

// MaxSummaryFindings bounds the findings listed in the remediation assistant
// context summary.
const MaxSummaryFindings = 12

// MaxRequestBodyBytes limits API request bodies.
const MaxRequestBodyBytes = 1 << 20
