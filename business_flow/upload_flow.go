package businessflow

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/amirphl/era4-frontend/app/dto"
	"github.com/amirphl/era4-frontend/utils"
)

// UploadFlow defines operations for inspecting uploaded files.
type UploadFlow interface {
	InspectUpload(ctx context.Context, req *dto.UploadFileRequest, metadata *ClientMetadata) (*dto.UploadFileResponse, error)
}

// UploadRecorder receives the outcome of every inspected upload.
type UploadRecorder interface {
	RecordUpload(size int64)
	RecordUploadFailure()
}

// UploadFlowImpl implements UploadFlow.
type UploadFlowImpl struct {
	recorder UploadRecorder
}

// NewUploadFlow creates a new upload flow instance. recorder may be nil.
func NewUploadFlow(recorder UploadRecorder) UploadFlow {
	return &UploadFlowImpl{recorder: recorder}
}

// InspectUpload reads the whole file into memory and reports its name, exact byte
// length and declared content type. Nothing is retained after it returns.
func (f *UploadFlowImpl) InspectUpload(ctx context.Context, req *dto.UploadFileRequest, metadata *ClientMetadata) (*dto.UploadFileResponse, error) {
	if req == nil {
		return nil, f.fail(ctx, metadata, NewBusinessError(CodeUploadFailed, "invalid upload request", ErrUploadRequestNil))
	}
	if req.File == nil {
		return nil, f.fail(ctx, metadata, NewBusinessError(CodeUploadFailed, "invalid upload request", ErrFileRequired))
	}

	content, err := io.ReadAll(&contextReader{ctx: ctx, r: req.File})
	if err != nil {
		return nil, f.fail(ctx, metadata, NewBusinessErrorf(CodeUploadFailed, "failed to read %q", err, req.Filename))
	}

	size := int64(len(content))
	if f.recorder != nil {
		f.recorder.RecordUpload(size)
	}

	return &dto.UploadFileResponse{
		Filename:    req.Filename,
		Size:        size,
		ContentType: utils.NonEmptyPtr(req.ContentType),
	}, nil
}

func (f *UploadFlowImpl) fail(ctx context.Context, metadata *ClientMetadata, err error) error {
	if f.recorder != nil {
		f.recorder.RecordUploadFailure()
	}

	requestID, _ := ctx.Value(utils.RequestIDKey).(string)
	endpoint, _ := ctx.Value(utils.EndpointKey).(string)
	ip, userAgent := "", ""
	if metadata != nil {
		ip, userAgent = metadata.IPAddress, metadata.UserAgent
		if metadata.RequestID != "" {
			requestID = metadata.RequestID
		}
	}
	log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"upload_failed","endpoint":"%s","error":%q,"ip":"%s","user_agent":%q}`,
		utils.UTCNow().Format(time.RFC3339), requestID, endpoint, err.Error(), ip, userAgent)

	return err
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
