package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"querygpt/cache"
	"querygpt/db"
	"querygpt/models"
)

// @title           QueryGPT API
// @version         1.0
// @description     Upload database schema PDFs and turn natural language questions into SQL.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5173
// @BasePath  /

// @schemes   http https

// Backend is the schema indexing / SQL generation service.
type Backend interface {
	Upload(ctx context.Context, file *models.SelectedFile, collection string) (*models.UploadResponse, error)
	Query(ctx context.Context, collection, query string) (*models.QueryResponse, error)
}

type Handlers struct {
	db             *db.DB
	backend        Backend
	sessions       *cache.Cache
	logger         *zap.Logger
	maxUploadBytes int64
	now            func() time.Time
}

func New(database *db.DB, backend Backend, sessions *cache.Cache, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		db:             database,
		backend:        backend,
		sessions:       sessions,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func uploadGuard(sessionID string) string { return sessionID + ":upload" }

func chatGuard(sessionID string) string { return sessionID + ":chat" }

// recordSchema remembers a successful upload. Failures are logged only.
func (h *Handlers) recordSchema(identifier string, file *models.SelectedFile) {
	rec := models.SchemaRecord{
		Identifier: identifier,
		FileName:   file.Name,
		SizeBytes:  file.Size(),
		UploadedAt: h.now().UTC(),
	}
	if err := h.db.StoreSchema(rec); err != nil {
		h.logger.Warn("failed to record schema", zap.String("identifier", identifier), zap.Error(err))
	}
}

// schemaFor looks up the registry record behind identifier, if it was
// uploaded through this frontend.
func (h *Handlers) schemaFor(identifier string) *models.SchemaRecord {
	if identifier == "" {
		return nil
	}
	rec, err := h.db.GetSchema(identifier)
	if err != nil {
		h.logger.Warn("failed to load schema", zap.String("identifier", identifier), zap.Error(err))
		return nil
	}
	return rec
}

func (h *Handlers) knownIdentifiers() []string {
	names, err := h.db.Identifiers()
	if err != nil {
		h.logger.Warn("failed to list schemas", zap.Error(err))
		return nil
	}
	return names
}
