package models

import "time"

// Form field names shared by the browser form, the JSON API and the backend.
const (
	FieldPDFFile        = "pdf_file"
	FieldCollectionName = "collection_name"
	FieldIdentifier     = "identifier"
	FieldQuery          = "query"

	ContentTypePDF = "application/pdf"
)

type QueryRequest struct {
	CollectionName string `json:"collection_name" binding:"required" example:"Sales Database v1"`
	Query          string `json:"query" binding:"required" example:"total order amount per customer"`
}

type QueryResponse struct {
	Result string `json:"result" example:"SELECT * FROM orders;"`
}

// UploadResponse is the acknowledgement returned by the backend after indexing
// a schema. Fields are informational only.
type UploadResponse struct {
	Status     string `json:"status,omitempty" example:"success"`
	Collection string `json:"collection,omitempty" example:"Sales Database v1"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// SelectedFile is the schema file currently chosen on the upload page.
type SelectedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *SelectedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

type UploadState struct {
	File        *SelectedFile
	Identifier  string
	FileError   string
	UploadError string
}

type ChatState struct {
	Identifier string
	Query      string
	Result     string
	Error      string
}

type Toast struct {
	Kind    string // "success" or "error"
	Message string
}

type SchemaRecord struct {
	Identifier string    `json:"identifier"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type NavLink struct {
	Label  string
	Path   string
	Active bool
}
