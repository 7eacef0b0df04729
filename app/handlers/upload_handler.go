package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"

	"github.com/amirphl/era4-frontend/app/dto"
	businessflow "github.com/amirphl/era4-frontend/business_flow"
	"github.com/amirphl/era4-frontend/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

var (
	errNotMultipart    = errors.New("request has no multipart/form-data Content-Type")
	errMissingBoundary = errors.New("multipart boundary is missing")
)

// UploadHandlerInterface defines the contract for upload handlers.
type UploadHandlerInterface interface {
	Upload(c fiber.Ctx) error
}

// UploadHandler handles file upload requests.
type UploadHandler struct {
	flow businessflow.UploadFlow
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(flow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{flow: flow}
}

// Upload measures an uploaded file and echoes its name, size and declared type.
// @Summary Upload a file
// @Description Accepts any file, reads it fully and returns its name, byte size and declared content type. Nothing is stored.
// @Tags Upload
// @Accept mpfd
// @Produce json
// @Param file formData file true "Any file"
// @Success 200 {object} dto.UploadFileResponse "File information"
// @Failure 500 {object} dto.UploadErrorResponse "File upload failed"
// @Router /upload [post]
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get(fiber.HeaderUserAgent))
	metadata.SetRequestID(requestid.FromContext(c))

	part, filename, err := openFilePart(c, utils.UploadFormField)
	if err != nil {
		return h.failure(c, err)
	}

	req := &dto.UploadFileRequest{
		Filename:    filename,
		ContentType: part.Header.Get(fiber.HeaderContentType),
		File:        part,
	}

	ctx, cancel := createRequestContext(c, "/upload", utils.UploadTimeout)
	defer cancel()

	result, err := h.flow.InspectUpload(ctx, req, metadata)
	if err != nil {
		return h.failure(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// failure renders every upload error the same way: 500 with the error text.
func (h *UploadHandler) failure(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.UploadErrorResponse{
		Detail: utils.UploadErrorPrefix + err.Error(),
	})
}

// openFilePart returns the first part named field that carries a filename parameter.
// The filename comes back exactly as sent: no path stripping, empty allowed.
func openFilePart(c fiber.Ctx, field string) (*multipart.Part, string, error) {
	mediaType, params, err := mime.ParseMediaType(c.Get(fiber.HeaderContentType))
	if err != nil || mediaType != fiber.MIMEMultipartForm {
		return nil, "", errNotMultipart
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, "", errMissingBoundary
	}

	reader := multipart.NewReader(bytes.NewReader(c.Body()), boundary)
	for {
		part, err := reader.NextRawPart()
		if err == io.EOF {
			return nil, "", businessflow.ErrFileRequired
		}
		if err != nil {
			return nil, "", err
		}

		disposition, dispParams, err := mime.ParseMediaType(part.Header.Get(fiber.HeaderContentDisposition))
		if err != nil || disposition != "form-data" || dispParams["name"] != field {
			continue
		}
		filename, ok := dispParams["filename"]
		if !ok {
			continue
		}
		return part, filename, nil
	}
}
