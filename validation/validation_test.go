package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"querygpt/models"
)

func TestPDFContentType(t *testing.T) {
	tests := []struct {
		ct      string
		wantErr bool
	}{
		{"application/pdf", false},
		{"", true},
		{"application/PDF", true},
		{"application/pdf; charset=binary", true},
		{"text/plain", true},
		{"image/png", true},
		{"application/octet-stream", true},
	}

	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			err := PDFContentType(tt.ct)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotPDF)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectPDF(t *testing.T) {
	assert.NoError(t, DetectPDF([]byte("%PDF-1.7\n%âãÏÓ\n1 0 obj")))
	assert.ErrorIs(t, DetectPDF([]byte("CREATE TABLE orders (id INT);")), ErrNotPDF)
	assert.ErrorIs(t, DetectPDF(nil), ErrNotPDF)
}

func TestFileSize(t *testing.T) {
	const max = 2 * 1024 * 1024

	assert.NoError(t, FileSize(1, max))
	assert.NoError(t, FileSize(max, max))
	assert.ErrorIs(t, FileSize(0, max), ErrEmptyFile)
	err := FileSize(max+1, max)
	assert.EqualError(t, err, "file too large (max 2MB)")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadReady(t *testing.T) {
	file := &models.SelectedFile{Name: "schema.pdf", ContentType: models.ContentTypePDF, Data: []byte("%PDF")}

	assert.NoError(t, UploadReady(file, "Sales Database v1"))
	assert.ErrorIs(t, UploadReady(nil, "Sales Database v1"), ErrMissingUpload)
	assert.ErrorIs(t, UploadReady(file, ""), ErrMissingUpload)
	assert.ErrorIs(t, UploadReady(file, "   "), ErrMissingUpload)
	assert.ErrorIs(t, UploadReady(nil, ""), ErrMissingUpload)
}

func TestQueryReady(t *testing.T) {
	assert.NoError(t, QueryReady("sales", "orders last week"))
	assert.ErrorIs(t, QueryReady("", "orders last week"), ErrMissingQuery)
	assert.ErrorIs(t, QueryReady("sales", ""), ErrMissingQuery)
	assert.ErrorIs(t, QueryReady(" ", "\t"), ErrMissingQuery)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrNotPDF))
	assert.True(t, IsValidation(FileSize(10, 1)))
	assert.True(t, IsValidation(QueryReady("", "")))
	assert.False(t, IsValidation(nil))
	assert.False(t, IsValidation(errors.New("backend returned 500")))
}
