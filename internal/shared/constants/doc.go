// Package constants centralizes timeouts, caps, and thresholds shared across
// the scanner and API layers.
//
// Keeping probe budgets, evidence caps, and the HSTS max-age threshold in one
// place prevents magic numbers from scattering across cmd/ and internal/, and
// lets packages reference them without import cycles.
package constants
