package utils

import (
	"time"
)

// Request context keys
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	EndpointKey  contextKey = "endpoint"
)

// Upload constants
const (
	// UploadFormField is the multipart field carrying the uploaded file
	UploadFormField = "file"

	// UploadErrorPrefix prefixes every upload failure detail
	UploadErrorPrefix = "File upload failed: "

	// UploadTimeout bounds a single upload request (read + measure)
	UploadTimeout = 5 * time.Minute
)

// Animals offered by the page, in display order
var Animals = []string{"cat", "dog", "elephant"}

// ServiceName is reported by the health endpoint
const ServiceName = "era4-frontend"
