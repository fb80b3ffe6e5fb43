package models

import "errors"

var (
	// ErrBlocked signals a bot-protection interstitial that survived the
	// navigator's recovery attempt.
	ErrBlocked = errors.New("defense page blocked navigation")

	// ErrNavigation signals exhausted navigation retries.
	ErrNavigation = errors.New("navigation failed after retries")

	// ErrNoResults signals a page without a recognizable result container.
	ErrNoResults = errors.New("no results on page")
)
