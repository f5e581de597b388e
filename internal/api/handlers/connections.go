package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planpoker/poker-jira-backend/internal/crypto"
	"github.com/planpoker/poker-jira-backend/internal/model"
	"github.com/planpoker/poker-jira-backend/internal/repository"
	"github.com/planpoker/poker-jira-backend/internal/service"
	"github.com/planpoker/poker-jira-backend/internal/utils"
)

type ConnectionHandler struct {
	Repo     *repository.PostgresRepo
	Enc      *crypto.Encryptor
	Resolver *service.Resolver
	Importer *service.Importer
}

func NewConnectionHandler(repo *repository.PostgresRepo, enc *crypto.Encryptor, resolver *service.Resolver, importer *service.Importer) *ConnectionHandler {
	return &ConnectionHandler{Repo: repo, Enc: enc, Resolver: resolver, Importer: importer}
}

func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.Repo.GetConnections(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.ConvertConnectionsToResponse(conns))
}

func (h *ConnectionHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	conn, err := h.Repo.GetConnection(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.ConvertConnectionToResponse(*conn))
}

func (h *ConnectionHandler) Create(c *gin.Context) {
	var req model.ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conn := &model.JiraConnection{
		Label:            req.Label,
		APIURL:           req.APIURL,
		Username:         req.Username,
		StoryPointsField: req.StoryPointsField,
	}

	if err := h.checkCredentials(c, conn, req.Password); err != nil {
		writeError(c, err)
		return
	}

	encrypted, err := h.Enc.Encrypt(req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	conn.EncryptedPassword = encrypted

	if err := h.Repo.CreateConnection(c.Request.Context(), conn); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.ConvertConnectionToResponse(*conn))
}

// Update replaces the profile fields. A blank password keeps the
// stored one and skips the live check, so a profile can be edited
// without retyping the secret.
func (h *ConnectionHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	conn, err := h.Repo.GetConnection(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conn.Label = req.Label
	conn.APIURL = req.APIURL
	conn.Username = req.Username
	conn.StoryPointsField = req.StoryPointsField

	if err := h.checkCredentials(c, conn, req.Password); err != nil {
		writeError(c, err)
		return
	}

	if req.Password != "" {
		encrypted, err := h.Enc.Encrypt(req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		conn.EncryptedPassword = encrypted
	}

	if err := h.Repo.UpdateConnection(c.Request.Context(), conn); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.ConvertConnectionToResponse(*conn))
}

func (h *ConnectionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Repo.DeleteConnection(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "connection deleted"})
}

// ImportStories runs the import flow against the connection in the
// path. Auth overrides ride along in the request body.
func (h *ConnectionHandler) ImportStories(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	conn, err := h.Repo.GetConnection(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !validSession(c, h.Repo, req.PokerSessionID) {
		return
	}

	out, err := h.Importer.Import(c.Request.Context(), conn, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// checkCredentials validates the profile the way the edit form does:
// URL and username must be present, and a supplied password is
// verified against the server before anything is saved. The stored
// secret never takes part, a blank password means no live check.
func (h *ConnectionHandler) checkCredentials(c *gin.Context, conn *model.JiraConnection, password string) error {
	probe := model.JiraConnection{APIURL: conn.APIURL, Username: conn.Username}
	_, err := h.Resolver.Resolve(c.Request.Context(), &probe, model.AuthOverride{Password: password})
	return err
}
