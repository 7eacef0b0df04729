// Package utils provides utility functions for the application.
package utils

func ToPtr[T any](v T) *T {
	return &v
}

// NonEmptyPtr returns nil for an empty string so it serializes as JSON null.
func NonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
