package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"querygpt/cache"
	"querygpt/models"
	"querygpt/service"
	"querygpt/validation"
)

// multipartOverhead is the slack allowed on top of the file size for the
// identifier field and part headers.
const multipartOverhead = 1 << 20

var (
	errUploadInFlight = errors.New("An upload is already in progress.")
	errQueryInFlight  = errors.New("A query is already in progress.")
	errInvalidForm    = errors.New("invalid upload form")
)

// submitUpload sends file to the backend unless another upload from the same
// session is still outstanding.
func (h *Handlers) submitUpload(ctx context.Context, sid string, file *models.SelectedFile, identifier string) error {
	if err := validation.UploadReady(file, identifier); err != nil {
		return err
	}
	if !h.sessions.Acquire(uploadGuard(sid)) {
		return errUploadInFlight
	}
	defer h.sessions.Release(uploadGuard(sid))

	if _, err := h.backend.Upload(ctx, file, identifier); err != nil {
		return err
	}

	h.logger.Info("schema uploaded",
		zap.String("identifier", identifier),
		zap.String("file", file.Name),
		zap.Int64("size", file.Size()))
	h.recordSchema(identifier, file)
	return nil
}

// submitQuery asks the backend for SQL unless another query from the same
// session is still outstanding.
func (h *Handlers) submitQuery(ctx context.Context, sid, identifier, query string) (string, error) {
	if err := validation.QueryReady(identifier, query); err != nil {
		return "", err
	}
	if !h.sessions.Acquire(chatGuard(sid)) {
		return "", errQueryInFlight
	}
	defer h.sessions.Release(chatGuard(sid))

	resp, err := h.backend.Query(ctx, identifier, query)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// readUpload extracts the schema file from a multipart request. It returns
// nil, nil when the request carries no file.
func (h *Handlers) readUpload(c *gin.Context) (*models.SelectedFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, validation.FileSize(h.maxUploadBytes+1, h.maxUploadBytes)
		}
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	fh, err := c.FormFile(models.FieldPDFFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if err := validation.PDFContentType(contentType); err != nil {
		return nil, err
	}
	if err := validation.FileSize(fh.Size, h.maxUploadBytes); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &models.SelectedFile{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

func isLocalFailure(err error) bool {
	return validation.IsValidation(err) ||
		errors.Is(err, errInvalidForm) ||
		errors.Is(err, errUploadInFlight) ||
		errors.Is(err, errQueryInFlight)
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, errUploadInFlight), errors.Is(err, errQueryInFlight):
		return http.StatusConflict
	case errors.Is(err, validation.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case isLocalFailure(err):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func describeUploadFailure(err error) string {
	if isLocalFailure(err) {
		return err.Error()
	}
	return service.DescribeUploadError(err)
}

func describeQueryFailure(err error) string {
	if isLocalFailure(err) {
		return err.Error()
	}
	return service.DescribeQueryError(err)
}

// UploadPageHandler renders the schema upload form.
func (h *Handlers) UploadPageHandler(c *gin.Context) {
	h.renderUpload(c, http.StatusOK, h.sessions.Load(sessionID(c)).Upload)
}

// UploadSubmitHandler handles the upload form. The last provided PDF replaces
// the session's selection; a rejected file leaves the selection untouched.
func (h *Handlers) UploadSubmitHandler(c *gin.Context) {
	sid := sessionID(c)

	if h.sessions.InFlight(uploadGuard(sid)) {
		state := h.sessions.Load(sid).Upload
		state.UploadError = errUploadInFlight.Error()
		h.renderUpload(c, http.StatusConflict, state)
		return
	}

	file, fileErr := h.readUpload(c)
	// An unparsable body (oversize, malformed) carries no usable fields, so
	// the identifier already in the session stays.
	parsed := c.Request.MultipartForm != nil
	if parsed {
		defer c.Request.MultipartForm.RemoveAll()
	}

	var state models.UploadState
	h.sessions.Update(sid, func(s *cache.Session) {
		if parsed {
			s.Upload.Identifier = c.Request.FormValue(models.FieldCollectionName)
		}
		if fileErr == nil && file != nil {
			s.Upload.File = file
		}
		state = s.Upload
	})
	identifier := state.Identifier

	if fileErr != nil {
		state.FileError = fileErr.Error()
		h.renderUpload(c, failureStatus(fileErr), state)
		return
	}

	if err := h.submitUpload(c.Request.Context(), sid, state.File, identifier); err != nil {
		if !isLocalFailure(err) {
			h.logger.Warn("schema upload failed", zap.String("identifier", identifier), zap.Error(err))
		}
		state.UploadError = describeUploadFailure(err)
		h.renderUpload(c, failureStatus(err), state)
		return
	}

	h.sessions.Update(sid, func(s *cache.Session) {
		s.Upload = models.UploadState{}
		s.Toast = &models.Toast{Kind: "success", Message: "Upload successful!"}
		if s.Chat.Identifier == "" {
			s.Chat.Identifier = identifier
		}
	})
	c.Redirect(http.StatusSeeOther, chatRoute)
}

// ChatPageHandler renders the query form and the latest generated SQL.
func (h *Handlers) ChatPageHandler(c *gin.Context) {
	h.renderChat(c, http.StatusOK, h.sessions.Load(sessionID(c)).Chat)
}

// ChatSubmitHandler handles the query form. Only the latest result is kept.
func (h *Handlers) ChatSubmitHandler(c *gin.Context) {
	sid := sessionID(c)

	if h.sessions.InFlight(chatGuard(sid)) {
		state := h.sessions.Load(sid).Chat
		state.Error = errQueryInFlight.Error()
		h.renderChat(c, http.StatusConflict, state)
		return
	}

	identifier := c.PostForm(models.FieldIdentifier)
	query := c.PostForm(models.FieldQuery)
	h.sessions.Update(sid, func(s *cache.Session) {
		s.Chat.Identifier = identifier
		s.Chat.Query = query
	})

	sql, err := h.submitQuery(c.Request.Context(), sid, identifier, query)
	if err != nil {
		var state models.ChatState
		h.sessions.Update(sid, func(s *cache.Session) {
			if !isLocalFailure(err) {
				s.Chat.Result = ""
			}
			state = s.Chat
		})
		if !isLocalFailure(err) {
			h.logger.Warn("query failed", zap.String("identifier", identifier), zap.Error(err))
		}
		state.Error = describeQueryFailure(err)
		h.renderChat(c, failureStatus(err), state)
		return
	}

	h.sessions.Update(sid, func(s *cache.Session) {
		s.Chat.Result = sql
	})
	c.Redirect(http.StatusSeeOther, chatRoute)
}
