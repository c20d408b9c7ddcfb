package shared

import "fmt"

var (
	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not logged in to Spotify")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrAuthFailed       = fmt.Errorf("authentication failed")

	// External call errors
	ErrNetwork  = fmt.Errorf("network request failed")
	ErrUpstream = fmt.Errorf("upstream service error")

	// Setlist errors
	ErrScrape    = fmt.Errorf("failed to read setlist")
	ErrNoResults = fmt.Errorf("no search results")

	// Run lifecycle errors
	ErrNoCheckpoint  = fmt.Errorf("no saved run to resume")
	ErrRunInProgress = fmt.Errorf("another run is already in progress")

	// Configuration and input errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
