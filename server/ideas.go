package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ideabox/internal/model"
)

type ideasResponse struct {
	Ideas []model.Idea `json:"ideas"`
}

type batchRequest struct {
	Updates []model.IdeaUpdate `json:"updates"`
}

// handleListIdeas returns every idea of the caller
func (s *Server) handleListIdeas(c echo.Context) error {
	ideas, err := s.docs.ListIdeas(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, "list ideas", err)
	}
	if ideas == nil {
		ideas = []model.Idea{}
	}
	return c.JSON(http.StatusOK, ideasResponse{Ideas: ideas})
}

// handlePutIdea creates or replaces one idea
func (s *Server) handlePutIdea(c echo.Context) error {
	var idea model.Idea
	if err := c.Bind(&idea); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	// The path names the document
	idea.ID = strings.TrimSpace(c.Param("id"))

	if err := s.docs.PutIdea(c.Request().Context(), userID(c), idea); err != nil {
		return s.respondError(c, "put idea", err)
	}
	return ok(c)
}

// handleUpdateIdea applies a partial update to an existing idea
func (s *Server) handleUpdateIdea(c echo.Context) error {
	var patch model.IdeaPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := s.docs.UpdateIdea(c.Request().Context(), userID(c), c.Param("id"), patch); err != nil {
		return s.respondError(c, "update idea", err)
	}
	return ok(c)
}

// handleCommitBatch applies all updates or none
func (s *Server) handleCommitBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := s.docs.CommitBatch(c.Request().Context(), userID(c), req.Updates); err != nil {
		return s.respondError(c, "commit batch", err)
	}
	return ok(c)
}

// handleDeleteIdea removes an idea; deleting a missing idea succeeds
func (s *Server) handleDeleteIdea(c echo.Context) error {
	if err := s.docs.DeleteIdea(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return s.respondError(c, "delete idea", err)
	}
	return ok(c)
}
