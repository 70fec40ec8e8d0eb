package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Catalog errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limited by catalog")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrBatchTooLarge      = fmt.Errorf("batch exceeds request limit")
	ErrMisaligned         = fmt.Errorf("response length does not match request")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Storage errors
	ErrLocked      = fmt.Errorf("output is locked by another run")
	ErrRunNotFound = fmt.Errorf("run not found")
)
