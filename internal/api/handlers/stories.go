package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/planpoker/poker-jira-backend/internal/model"
	"github.com/planpoker/poker-jira-backend/internal/repository"
	"github.com/planpoker/poker-jira-backend/internal/service"
)

type StoryHandler struct {
	Repo     *repository.PostgresRepo
	Exporter *service.Exporter
}

func NewStoryHandler(repo *repository.PostgresRepo, exporter *service.Exporter) *StoryHandler {
	return &StoryHandler{Repo: repo, Exporter: exporter}
}

func (h *StoryHandler) List(c *gin.Context) {
	sessionID := c.Query("poker_session_id")
	if sessionID != "" && uuid.Validate(sessionID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poker_session_id must be a UUID"})
		return
	}

	stories, err := h.Repo.GetStories(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stories)
}

func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	story, err := h.Repo.GetStory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) Create(c *gin.Context) {
	var req model.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !validSession(c, h.Repo, req.PokerSessionID) {
		return
	}

	story := &model.Story{
		TicketNumber:   model.NullStringFrom(req.TicketNumber),
		Title:          req.Title,
		Description:    req.Description,
		StoryPoints:    model.NullFloatFrom(req.StoryPoints),
		PokerSessionID: model.NullStringFrom(req.PokerSessionID),
	}

	if err := h.Repo.CreateStory(c.Request.Context(), story); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	story, err := h.Repo.GetStory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var req model.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !validSession(c, h.Repo, req.PokerSessionID) {
		return
	}

	story.TicketNumber = model.NullStringFrom(req.TicketNumber)
	story.Title = req.Title
	story.Description = req.Description
	story.StoryPoints = model.NullFloatFrom(req.StoryPoints)
	story.PokerSessionID = model.NullStringFrom(req.PokerSessionID)

	if err := h.Repo.UpdateStory(c.Request.Context(), story); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Repo.DeleteStory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}

// Export pushes the selected stories' points to the chosen connection.
// An unknown connection is a selection problem, not a missing
// resource, so it reports like any other field error.
func (h *StoryHandler) Export(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	for _, id := range req.StoryIDs {
		if uuid.Validate(id) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidChoice, "field": "story_ids"})
			return
		}
	}

	if uuid.Validate(req.ConnectionID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidChoice, "field": "connection_id"})
		return
	}
	conn, err := h.Repo.GetConnection(c.Request.Context(), req.ConnectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidChoice, "field": "connection_id"})
			return
		}
		writeError(c, err)
		return
	}

	out, err := h.Exporter.Export(c.Request.Context(), conn, req.StoryIDs, req.Auth)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
