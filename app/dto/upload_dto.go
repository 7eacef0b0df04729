package dto

import "io"

// UploadFileRequest carries one uploaded file from handler to flow.
type UploadFileRequest struct {
	Filename    string    `json:"-"`
	ContentType string    `json:"-"`
	File        io.Reader `json:"-"`
}

// UploadFileResponse describes a received upload. ContentType is the type declared
// by the client and is null when none was sent.
type UploadFileResponse struct {
	Filename    string  `json:"filename"`
	Size        int64   `json:"size"`
	ContentType *string `json:"content_type"`
}

// UploadErrorResponse is returned when an upload cannot be processed
type UploadErrorResponse struct {
	Detail string `json:"detail"`
}
