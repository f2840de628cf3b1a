package scanner

import (
	"fmt"
	"strings"

	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
)

// ContextSummary renders the bounded textual digest of a scan that the
// remediation assistant consumes as read-only context: target, score, and
// the first findings as "key: STATUS - title" lines, with a trailing count
// of any remainder. The scan itself is never mutated.
func ContextSummary(scan *Scan) string {
	if scan == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target: %s\n", scan.URL)
	fmt.Fprintf(&sb, "Score: %d\n", scan.Score)
	fmt.Fprintf(&sb, "Findings (%d):\n", len(scan.Findings))

	limit := consts.MaxSummaryFindings
	for i, f := range scan.Findings {
		if i == limit {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s - %s\n", f.Key, f.Status, f.Title)
	}
	if remainder := len(scan.Findings) - limit; remainder > 0 {
		fmt.Fprintf(&sb, "... and %d more\n", remainder)
	}
	return sb.String()
}
