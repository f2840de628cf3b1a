package scanner

// ScoreFindings folds finding statuses into a 0-100 posture score: each FAIL
// subtracts 10, each WARN subtracts 5, PASS and INFO contribute nothing.
// The fold is order-independent and deterministic, so re-scoring the same
// findings always yields the same integer.
func ScoreFindings(findings []Finding) int {
	score := 100
	for _, f := range findings {
		switch f.Status {
		case StatusFail:
			score -= 10
		case StatusWarn:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
