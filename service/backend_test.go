package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygpt/models"
)

func newClient(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendClient(srv.URL+"/", 5*time.Second, nil)
}

func samplePDF() *models.SelectedFile {
	return &models.SelectedFile{Name: "schema.pdf", ContentType: models.ContentTypePDF, Data: []byte("%PDF-1.4 tables")}
}

func TestUpload_SendsMultipartBody(t *testing.T) {
	var gotPath, gotCollection, gotFileName, gotPartType string
	var gotData []byte

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotCollection = r.FormValue("collection_name")
		file, header, err := r.FormFile("pdf_file")
		require.NoError(t, err)
		defer file.Close()
		gotFileName = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","collection":"Sales Database v1"}`))
	})

	resp, err := client.Upload(context.Background(), samplePDF(), "Sales Database v1")
	require.NoError(t, err)

	assert.Equal(t, "/api/upload", gotPath)
	assert.Equal(t, "Sales Database v1", gotCollection)
	assert.Equal(t, "schema.pdf", gotFileName)
	assert.Equal(t, "application/pdf", gotPartType)
	assert.Equal(t, []byte("%PDF-1.4 tables"), gotData)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Sales Database v1", resp.Collection)
}

func TestUpload_AnyTwoHundredIsSuccess(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	})

	resp, err := client.Upload(context.Background(), samplePDF(), "sales")
	require.NoError(t, err)
	assert.Empty(t, resp.Status)
}

func TestUpload_StatusError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Could not process PDF file"}`))
	})

	_, err := client.Upload(context.Background(), samplePDF(), "sales")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Equal(t, "Internal Server Error", statusErr.StatusText)
	assert.Equal(t, "Could not process PDF file", statusErr.Message)
	assert.Equal(t, "Upload failed: Internal Server Error", DescribeUploadError(err))
}

func TestQuery_SendsJSON(t *testing.T) {
	var got models.QueryRequest
	var gotContentType string

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":"SELECT * FROM orders;"}`))
	})

	resp, err := client.Query(context.Background(), "sales", "all orders")
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, models.QueryRequest{CollectionName: "sales", Query: "all orders"}, got)
	assert.Equal(t, "SELECT * FROM orders;", resp.Result)
}

func TestQuery_ErrorTaxonomy(t *testing.T) {
	t.Run("server message", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Missing query in request"}`))
		})
		_, err := client.Query(context.Background(), "sales", "q")
		assert.Equal(t, "Server error: 400 - Missing query in request", DescribeQueryError(err))
	})

	t.Run("error field", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"collection not found"}`))
		})
		_, err := client.Query(context.Background(), "sales", "q")
		assert.Equal(t, "Server error: 500 - collection not found", DescribeQueryError(err))
	})

	t.Run("generic message", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.Query(context.Background(), "sales", "q")
		assert.Equal(t, "Server error: 502 - Request failed with status code 502", DescribeQueryError(err))
	})

	t.Run("no response", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := NewBackendClient(url, time.Second, nil)
		_, err := client.Query(context.Background(), "sales", "q")
		require.ErrorIs(t, err, ErrNoResponse)
		assert.Equal(t, "No response from server. Please check your network connection.", DescribeQueryError(err))
	})

	t.Run("request not constructible", func(t *testing.T) {
		client := NewBackendClient("http://bad host", time.Second, nil)
		_, err := client.Query(context.Background(), "sales", "q")

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Contains(t, DescribeQueryError(err), "Error: ")
	})

	t.Run("undecodable body", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		_, err := client.Query(context.Background(), "sales", "q")
		require.ErrorIs(t, err, ErrInvalidResponse)
		assert.Contains(t, DescribeQueryError(err), "Error: invalid response from server")
	})
}

func TestQuery_ContextCancelled(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Query(ctx, "sales", "q")
	assert.ErrorIs(t, err, ErrNoResponse)
}
