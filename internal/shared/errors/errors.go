package errors

import "errors"

// Domain errors
var (
	// Target validation errors
	ErrInvalidTargetURL = errors.New("target URL must be an absolute http or https URL")
	ErrEmptyTarget      = errors.New("target URL cannot be empty")

	// Scan errors
	ErrClientInit   = errors.New("failed to initialize HTTP client")
	ErrNoScan       = errors.New("no scan has completed yet")
	ErrScanNotFound = errors.New("scan not found")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// Paths file errors
	ErrInvalidPathsFile = errors.New("invalid extra paths file")
)
