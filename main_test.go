package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygpt/validation"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QUERYGPT_BACKEND_URL", "")
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadSchemaFile(t *testing.T) {
	pdf := writeFile(t, "sales.pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"))
	file, err := readSchemaFile(pdf, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "sales.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)

	_, err = readSchemaFile(writeFile(t, "notes.pdf", []byte("just some notes")), 1<<20)
	assert.ErrorIs(t, err, validation.ErrNotPDF)

	_, err = readSchemaFile(writeFile(t, "empty.pdf", nil), 1<<20)
	assert.ErrorIs(t, err, validation.ErrEmptyFile)

	_, err = readSchemaFile(pdf, 8)
	assert.ErrorIs(t, err, validation.ErrTooLarge)

	_, err = readSchemaFile(filepath.Join(t.TempDir(), "missing.pdf"), 1<<20)
	assert.Error(t, err)
}

func TestQueryCommand(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"SELECT * FROM orders;"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "query", "--backend", srv.URL, "--collection", "sales", "show", "all", "orders")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM orders;\n", out)
	assert.Equal(t, map[string]string{"collection_name": "sales", "query": "show all orders"}, got)
}

func TestQueryCommand_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"collection not found"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "query", "--backend", srv.URL, "--collection", "sales", "orders")
	require.Error(t, err)
	assert.Equal(t, "Server error: 500 - collection not found", err.Error())
}

func TestUploadCommand(t *testing.T) {
	var collection string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		collection = r.FormValue("collection_name")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	pdf := writeFile(t, "sales.pdf", []byte("%PDF-1.4\n%schema\n"))
	out, err := execute(t, "upload", "--backend", srv.URL, "--file", pdf, "--collection", "Sales Database v1")
	require.NoError(t, err)

	assert.Equal(t, "Sales Database v1", collection)
	assert.Contains(t, out, `Uploaded sales.pdf`)
	assert.Contains(t, out, `as "Sales Database v1"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "querygpt dev\n", out)
}
