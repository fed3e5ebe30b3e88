package weather

import "errors"

// Failure taxonomy for a refresh cycle. All of these degrade to "no data
// available" at the API boundary; the store keeps whatever it already has.
var (
	// ErrNetwork covers connection and I/O failures talking to the provider.
	ErrNetwork = errors.New("network failure")

	// ErrMalformedRequest means the configured location could not be encoded
	// into a valid request URL.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrLocationNotFound means the provider reported an unknown location.
	ErrLocationNotFound = errors.New("location not found")

	// ErrServiceUnavailable means the provider answered with a non-success
	// status other than not-found.
	ErrServiceUnavailable = errors.New("weather service unavailable")

	// ErrMalformedResponse means a required field was absent or of the wrong
	// type in an otherwise successful response.
	ErrMalformedResponse = errors.New("malformed response")
)
