package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	ErrUploadRequestNil = errors.New("upload request is nil")
	ErrFileRequired     = errors.New("there is no uploaded file associated with the given key")
)

// Error codes carried by BusinessError
const (
	CodeUploadFailed = "UPLOAD_FAILED"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// IsUploadFailed reports whether err is an upload processing failure
func IsUploadFailed(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Code == CodeUploadFailed
}

func IsFileRequired(err error) bool {
	return errors.Is(err, ErrFileRequired)
}
