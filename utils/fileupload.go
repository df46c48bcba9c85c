package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// AllowedImageFormat is PNG
	AllowedImageFormat = ".png"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return errFileTooLarge()
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != AllowedImageFormat {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", AllowedImageFormat),
		}
	}

	return nil
}

// ReadImageFile validates and reads an uploaded PNG
func ReadImageFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	if err := ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if err := ValidatePNG(content); err != nil {
		return nil, err
	}
	return content, nil
}

// ValidatePNG checks size and the PNG signature of raw image bytes
func ValidatePNG(content []byte) error {
	if len(content) > MaxFileSize {
		return errFileTooLarge()
	}
	if !bytes.HasPrefix(content, pngSignature) {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "File content is not a PNG image",
		}
	}
	return nil
}

// DecodeImageDataURL decodes a data:image/png;base64 URL, as produced by a canvas export
func DecodeImageDataURL(dataURL string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Image must be a base64 PNG data URL",
		}
	}
	content, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		return nil, &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Image data is not valid base64",
		}
	}
	if err := ValidatePNG(content); err != nil {
		return nil, err
	}
	return content, nil
}

func errFileTooLarge() error {
	return &FileUploadError{
		Code:    "FILE_TOO_LARGE",
		Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
	}
}
