package handlers

import (
	"github.com/gin-gonic/gin"

	"querygpt/models"
)

type page struct {
	Title       string
	Nav         []models.NavLink
	Toast       *models.Toast
	Upload      *models.UploadState
	Chat        *models.ChatState
	Identifiers []string
	Schema      *models.SchemaRecord
	MaxUploadMB int64
}

func (h *Handlers) renderUpload(c *gin.Context, status int, state models.UploadState) {
	c.HTML(status, "upload.html", page{
		Title:       "Upload Schema",
		Nav:         Navigation(uploadRoute),
		Toast:       h.sessions.TakeToast(sessionID(c)),
		Upload:      &state,
		MaxUploadMB: h.maxUploadBytes / (1024 * 1024),
	})
}

func (h *Handlers) renderChat(c *gin.Context, status int, state models.ChatState) {
	c.HTML(status, "chat.html", page{
		Title:       "Query Assistant",
		Nav:         Navigation(chatRoute),
		Toast:       h.sessions.TakeToast(sessionID(c)),
		Chat:        &state,
		Identifiers: h.knownIdentifiers(),
		Schema:      h.schemaFor(state.Identifier),
	})
}
