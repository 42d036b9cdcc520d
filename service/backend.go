package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"querygpt/models"
)

const (
	uploadPath = "/api/upload"
	queryPath  = "/api/query"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BackendClient talks to the schema indexing / SQL generation API.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("backend"),
	}
}

func (b *BackendClient) BaseURL() string {
	return b.baseURL
}

// Upload sends a schema PDF to be indexed under collection. Any 2xx answer is
// a success; the acknowledgement body is decoded best effort.
func (b *BackendClient) Upload(ctx context.Context, file *models.SelectedFile, collection string) (*models.UploadResponse, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="%s"; filename="%s"`, models.FieldPDFFile, quoteEscaper.Replace(file.Name))},
		"Content-Type":        {models.ContentTypePDF},
	})
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, &RequestError{Err: err}
	}
	if err := w.WriteField(models.FieldCollectionName, collection); err != nil {
		return nil, &RequestError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &RequestError{Err: err}
	}

	data, err := b.post(ctx, uploadPath, w.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}

	out := &models.UploadResponse{}
	if err := json.Unmarshal(data, out); err != nil {
		b.logger.Debug("upload acknowledgement is not JSON", zap.Error(err))
	}
	return out, nil
}

// Query asks the backend for SQL answering query against collection.
func (b *BackendClient) Query(ctx context.Context, collection, query string) (*models.QueryResponse, error) {
	payload, err := json.Marshal(models.QueryRequest{CollectionName: collection, Query: query})
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	data, err := b.post(ctx, queryPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var out models.QueryResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &out, nil
}

func (b *BackendClient) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	url := b.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Warn("backend unreachable", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	b.logger.Debug("backend responded",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Message:    serverMessage(data),
		}
		b.logger.Warn("backend rejected request", zap.String("url", url), zap.Error(statusErr))
		return nil, statusErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	return data, nil
}

// statusText returns the reason phrase of resp, e.g. "Internal Server Error".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// serverMessage pulls "message" or "error" out of a JSON error body.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
