package upload

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

type ErrorReason string

const (
	REASON_EMPTY_FILE   ErrorReason = "EMPTY_FILE"
	REASON_NOT_AN_IMAGE ErrorReason = "NOT_AN_IMAGE"
)

type Error struct {
	Reason  ErrorReason
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Image is a user-selected image file, sniffed from its content rather than
// trusted from its name.
type Image struct {
	file openapi_types.File
	mime *mimetype.MIME
}

var imageValidator = validation.New()

type sniffedFile struct {
	ContentType string `json:"content_type" validate:"image_mime"`
}

// NewImage accepts data only when its detected MIME type is an image type.
func NewImage(filename string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, &Error{Reason: REASON_EMPTY_FILE, Message: fmt.Sprintf("%q is empty", filename)}
	}

	mime := mimetype.Detect(data)
	if err := imageValidator.Struct(sniffedFile{ContentType: mime.String()}); err != nil {
		return Image{}, &Error{
			Reason:  REASON_NOT_AN_IMAGE,
			Message: fmt.Sprintf("%q is %s, not an image", filename, mime.String()),
		}
	}

	var f openapi_types.File
	f.InitFromBytes(data, filename)

	return Image{file: f, mime: mime}, nil
}

func (i Image) IsZero() bool {
	return i.mime == nil
}

func (i Image) Filename() string {
	return i.file.Filename()
}

func (i Image) ContentType() string {
	if i.mime == nil {
		return ""
	}
	return i.mime.String()
}

func (i Image) Size() int64 {
	return i.file.FileSize()
}

func (i Image) Reader() (io.ReadCloser, error) {
	return i.file.Reader()
}
