package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planpoker/poker-jira-backend/internal/model"
	"github.com/planpoker/poker-jira-backend/internal/repository"
)

type SessionHandler struct {
	Repo *repository.PostgresRepo
}

func NewSessionHandler(repo *repository.PostgresRepo) *SessionHandler {
	return &SessionHandler{Repo: repo}
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.Repo.GetSessions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	session, err := h.Repo.GetSession(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req model.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	session := &model.PokerSession{Name: req.Name}
	if err := h.Repo.CreateSession(c.Request.Context(), session); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}
