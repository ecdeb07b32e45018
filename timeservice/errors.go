package timeservice

import "errors"

var (
	// ErrEmptyCity indicates the city was empty after sanitizing.
	ErrEmptyCity = errors.New("city is required")

	// ErrInvalidCity indicates the city cannot be used as a DNS label.
	ErrInvalidCity = errors.New("invalid city name")

	// ErrLookupTimeout indicates the lookup command did not finish in time.
	ErrLookupTimeout = errors.New("time lookup timed out")

	// ErrLookupFailed indicates the lookup command failed without output.
	ErrLookupFailed = errors.New("time lookup failed")

	// ErrUnknownPlatform indicates an unsupported platform setting.
	ErrUnknownPlatform = errors.New("unknown platform mode")
)
