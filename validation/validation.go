// Package validation holds the input checks applied before anything is sent
// to the schema backend.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"querygpt/models"
)

var (
	ErrNotPDF        = errors.New("Please upload a PDF file.")
	ErrMissingUpload = errors.New("Please select a file and provide a schema identifier.")
	ErrMissingQuery  = errors.New("Please provide a schema identifier and describe your query.")
	ErrEmptyFile     = errors.New("The selected file is empty.")
	ErrTooLarge      = errors.New("file too large")
)

// PDFContentType accepts only the exact declared type application/pdf.
// Parameters such as charset are not tolerated, matching what browsers send.
func PDFContentType(ct string) error {
	if ct != models.ContentTypePDF {
		return ErrNotPDF
	}
	return nil
}

// DetectPDF sniffs the leading bytes of a file for callers that have no
// declared content type (CLI uploads).
func DetectPDF(data []byte) error {
	detected := http.DetectContentType(data)
	if strings.TrimSpace(strings.Split(detected, ";")[0]) != models.ContentTypePDF {
		return ErrNotPDF
	}
	return nil
}

// FileSize rejects empty files and files above max bytes.
func FileSize(size, max int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if size > max {
		return fmt.Errorf("%w (max %dMB)", ErrTooLarge, max/(1024*1024))
	}
	return nil
}

// IsValidation reports whether err is one of the input errors above.
func IsValidation(err error) bool {
	for _, target := range []error{ErrNotPDF, ErrMissingUpload, ErrMissingQuery, ErrEmptyFile, ErrTooLarge} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UploadReady reports whether an upload may be sent.
func UploadReady(file *models.SelectedFile, identifier string) error {
	if file == nil || strings.TrimSpace(identifier) == "" {
		return ErrMissingUpload
	}
	return nil
}

// QueryReady reports whether a query may be sent.
func QueryReady(identifier, query string) error {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(query) == "" {
		return ErrMissingQuery
	}
	return nil
}
