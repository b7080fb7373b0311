package image

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxFileSize is the largest accepted input, in bytes.
const DefaultMaxFileSize = 20 * 1024 * 1024

// AcceptedTypes lists the content types accepted as input.
var AcceptedTypes = []string{"image/png", "image/jpeg", "image/webp"}

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// ValidationError reports why one input file was rejected.
type ValidationError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks content type and size. It returns the detected MIME type.
// maxBytes <= 0 selects DefaultMaxFileSize.
func Validate(name string, data []byte, maxBytes int64) (string, error) {
	mime := mimetype.Detect(data)
	if !accepted(mime) {
		return "", &ValidationError{
			Name:   name,
			Reason: "only PNG, JPEG and WEBP files are supported",
			Err:    ErrUnsupportedType,
		}
	}
	if err := sizeError(name, int64(len(data)), maxBytes); err != nil {
		return "", err
	}
	return mime.String(), nil
}

// checkSize rejects oversized files before they are read.
func checkSize(name, path string, maxBytes int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	return sizeError(name, fi.Size(), maxBytes)
}

func sizeError(name string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	if size <= maxBytes {
		return nil
	}
	return &ValidationError{
		Name:   name,
		Reason: fmt.Sprintf("file must be %dMB or smaller", maxBytes/(1024*1024)),
		Err:    ErrFileTooLarge,
	}
}

func accepted(m *mimetype.MIME) bool {
	for _, t := range AcceptedTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
