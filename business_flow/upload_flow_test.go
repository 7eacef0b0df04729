package businessflow

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/amirphl/era4-frontend/app/dto"
	"github.com/amirphl/era4-frontend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu       sync.Mutex
	sizes    []int64
	failures int
}

func (r *fakeRecorder) RecordUpload(size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, size)
}

func (r *fakeRecorder) RecordUploadFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestInspectUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		payload     []byte
		expectType  *string
	}{
		{
			name:        "text file",
			filename:    "notes.txt",
			contentType: "text/plain",
			payload:     []byte("hello world"),
			expectType:  utils.ToPtr("text/plain"),
		},
		{
			name:        "empty file",
			filename:    "empty.bin",
			contentType: "application/octet-stream",
			payload:     []byte{},
			expectType:  utils.ToPtr("application/octet-stream"),
		},
		{
			name:       "no declared content type",
			filename:   "mystery",
			payload:    []byte{0x00, 0x01, 0x02},
			expectType: nil,
		},
		{
			name:        "declared type is not verified",
			filename:    "photo.jpg",
			contentType: "image/jpeg",
			payload:     []byte("definitely not a jpeg"),
			expectType:  utils.ToPtr("image/jpeg"),
		},
		{
			name:        "large payload",
			filename:    "big.dat",
			contentType: "application/x-custom",
			payload:     bytes.Repeat([]byte{0xAB}, 3*1024*1024+7),
			expectType:  utils.ToPtr("application/x-custom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			flow := NewUploadFlow(recorder)

			result, err := flow.InspectUpload(context.Background(), &dto.UploadFileRequest{
				Filename:    tt.filename,
				ContentType: tt.contentType,
				File:        bytes.NewReader(tt.payload),
			}, NewClientMetadata("127.0.0.1", "test-agent"))
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.filename, result.Filename)
			assert.Equal(t, int64(len(tt.payload)), result.Size)
			assert.Equal(t, tt.expectType, result.ContentType)
			assert.Equal(t, []int64{int64(len(tt.payload))}, recorder.sizes)
			assert.Zero(t, recorder.failures)
		})
	}
}

func TestInspectUploadFailures(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		recorder := &fakeRecorder{}
		_, err := NewUploadFlow(recorder).InspectUpload(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, IsUploadFailed(err))
		assert.ErrorIs(t, err, ErrUploadRequestNil)
		assert.Equal(t, 1, recorder.failures)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewUploadFlow(nil).InspectUpload(context.Background(), &dto.UploadFileRequest{Filename: "a.txt"}, nil)
		require.Error(t, err)
		assert.True(t, IsUploadFailed(err))
		assert.True(t, IsFileRequired(err))
	})

	t.Run("read error", func(t *testing.T) {
		recorder := &fakeRecorder{}
		_, err := NewUploadFlow(recorder).InspectUpload(context.Background(), &dto.UploadFileRequest{
			Filename: "broken.bin",
			File:     failingReader{},
		}, NewClientMetadata("10.0.0.1", "curl/8"))
		require.Error(t, err)
		assert.True(t, IsUploadFailed(err))
		assert.Contains(t, err.Error(), "connection reset by peer")
		assert.Contains(t, err.Error(), `"broken.bin"`)
		assert.Empty(t, recorder.sizes)
		assert.Equal(t, 1, recorder.failures)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewUploadFlow(nil).InspectUpload(ctx, &dto.UploadFileRequest{
			Filename: "late.txt",
			File:     strings.NewReader("too late"),
		}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInspectUploadFailureLog(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	ctx := context.WithValue(context.Background(), utils.RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, utils.EndpointKey, "/upload")

	_, err := NewUploadFlow(nil).InspectUpload(ctx, &dto.UploadFileRequest{
		Filename: "broken.bin",
		File:     failingReader{},
	}, NewClientMetadata("10.0.0.7", "curl/8.5"))
	require.Error(t, err)

	line := buf.String()
	assert.Contains(t, line, `"request_id":"req-42"`)
	assert.Contains(t, line, `"endpoint":"/upload"`)
	assert.Contains(t, line, `"ip":"10.0.0.7"`)
	assert.Contains(t, line, `"user_agent":"curl/8.5"`)
	assert.Contains(t, line, `"event":"upload_failed"`)
}

func TestInspectUploadConcurrent(t *testing.T) {
	flow := NewUploadFlow(&fakeRecorder{})

	const workers = 16
	var wg sync.WaitGroup
	results := make([]*dto.UploadFileResponse, workers)
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte("x"), 1000*(i+1))
			results[i], errs[i] = flow.InspectUpload(context.Background(), &dto.UploadFileRequest{
				Filename: "file.txt",
				File:     bytes.NewReader(payload),
			}, nil)
		}(i)
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1000*(i+1)), results[i].Size)
	}
}
