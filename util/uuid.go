// Package util provides utility functions for the product catalog.
package util

import "github.com/google/uuid"

// GenerateRequestID returns a random v4 UUID used to correlate API calls.
func GenerateRequestID() string {
	return uuid.NewString()
}
