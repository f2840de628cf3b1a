package scanner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Status is the verdict of a single check. INFO means inconclusive or not
// applicable, never a pass/fail judgment.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
	StatusInfo Status = "INFO"
)

// Risk is the severity of a finding if the flagged condition is real.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Confidence expresses how certain the heuristic behind a finding is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Evidence carries bounded supporting observations for a finding: raw header
// values, matched snippets, probed URLs. Each check caps its own entries.
type Evidence map[string]interface{}

// Finding is one check's structured verdict about a single aspect of the
// target's HTTP security posture.
type Finding struct {
	ID             string     `json:"id"`
	Key            string     `json:"key"`
	Title          string     `json:"title"`
	Status         Status     `json:"status"`
	Risk           Risk       `json:"risk"`
	Confidence     Confidence `json:"confidence"`
	Evidence       Evidence   `json:"evidence"`
	Recommendation string     `json:"recommendation"`
}

// Scan is the aggregate result of running every registered check once
// against one target URL. Findings are ordered by check registration order
// and the score is derived from their statuses. A Scan is never mutated
// after construction.
type Scan struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

func newFinding(key, title string, status Status, risk Risk, confidence Confidence, evidence Evidence, recommendation string) Finding {
	if evidence == nil {
		evidence = Evidence{}
	}
	return Finding{
		ID:             generateID("f"),
		Key:            key,
		Title:          title,
		Status:         status,
		Risk:           risk,
		Confidence:     confidence,
		Evidence:       evidence,
		Recommendation: recommendation,
	}
}

// degradedFinding is the single error-handling boundary for checks: any
// network, TLS, or parse failure becomes an inconclusive INFO finding and
// never crosses the check boundary.
func degradedFinding(key, title string, err error, recommendation string) Finding {
	return newFinding(key, title, StatusInfo, RiskLow, ConfidenceLow,
		Evidence{"error": err.Error()}, recommendation)
}

// generateID returns an opaque, collision-resistant identifier.
func generateID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}
