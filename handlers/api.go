package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"querygpt/models"
)

// APIUploadHandler uploads a schema PDF for scripted clients
// @Summary      Upload schema PDF
// @Description  Forward a PDF schema to the backend to be indexed under a collection name.
// @Description  One upload at a time per session cookie, or per client address when no cookie is sent.
// @Tags         Schemas
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf_file         formData  file    true  "Schema PDF (declared type must be application/pdf)"
// @Param        collection_name  formData  string  true  "Schema identifier"
// @Success      200  {object}  models.UploadResponse
// @Failure      400  {object}  models.ErrorResponse  "Missing or invalid input"
// @Failure      409  {object}  models.ErrorResponse  "An upload is already in progress"
// @Failure      413  {object}  models.ErrorResponse  "File too large"
// @Failure      502  {object}  models.ErrorResponse  "Backend failure"
// @Router       /api/upload [post]
func (h *Handlers) APIUploadHandler(c *gin.Context) {
	caller := apiCaller(c)

	file, err := h.readUpload(c)
	if c.Request.MultipartForm != nil {
		defer c.Request.MultipartForm.RemoveAll()
	}
	if err != nil {
		c.JSON(failureStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	identifier := c.Request.FormValue(models.FieldCollectionName)

	if err := h.submitUpload(c.Request.Context(), caller, file, identifier); err != nil {
		if !isLocalFailure(err) {
			h.logger.Warn("schema upload failed", zap.String("identifier", identifier), zap.Error(err))
		}
		c.JSON(failureStatus(err), models.ErrorResponse{Error: describeUploadFailure(err)})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Status: "success", Collection: identifier})
}

// APIQueryHandler generates SQL for scripted clients
// @Summary      Generate SQL from natural language
// @Description  Ask the backend for a SQL query answering the question against a previously uploaded schema.
// @Description  One query at a time per session cookie, or per client address when no cookie is sent.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      models.QueryRequest  true  "Schema identifier and question"
// @Success      200      {object}  models.QueryResponse
// @Failure      400      {object}  models.ErrorResponse  "Invalid request"
// @Failure      409      {object}  models.ErrorResponse  "A query is already in progress"
// @Failure      502      {object}  models.ErrorResponse  "Backend failure"
// @Router       /api/query [post]
func (h *Handlers) APIQueryHandler(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request"})
		return
	}

	sql, err := h.submitQuery(c.Request.Context(), apiCaller(c), req.CollectionName, req.Query)
	if err != nil {
		if !isLocalFailure(err) {
			h.logger.Warn("query failed", zap.String("identifier", req.CollectionName), zap.Error(err))
		}
		c.JSON(failureStatus(err), models.ErrorResponse{Error: describeQueryFailure(err)})
		return
	}

	c.JSON(http.StatusOK, models.QueryResponse{Result: sql})
}

// ListCollectionsHandler lists the schemas uploaded through this frontend
// @Summary      List uploaded schemas
// @Description  Schema identifiers uploaded through this frontend, most recent first
// @Tags         Schemas
// @Produce      json
// @Success      200  {object}  map[string][]models.SchemaRecord
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/collections [get]
func (h *Handlers) ListCollectionsHandler(c *gin.Context) {
	records, err := h.db.ListSchemas()
	if err != nil {
		h.logger.Error("failed to list schemas", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load schemas"})
		return
	}
	if records == nil {
		records = []models.SchemaRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"collections": records})
}
