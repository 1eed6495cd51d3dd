package handlers

import (
	"net/http"
	"strconv"

	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a new question with its first version
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Creating question", "user_id", actor.UserID)

	var req services.QuestionContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), *actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ReviseQuestion appends a new version to an existing question
func (h *QuestionHandler) ReviseQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Revising question", "question_id", id, "user_id", actor.UserID)

	var req services.QuestionContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Revise(c.Request.Context(), *actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves the latest version, or ?version=N for a pinned one
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var version *int
	if versionStr := c.Query("version"); versionStr != "" {
		v, err := strconv.Atoi(versionStr)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid version",
			})
			return
		}
		version = &v
	}

	question, err := h.questionService.Get(c.Request.Context(), *actor, id, version)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists the catalogue, scoped to own questions unless the
// actor holds the list permission
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	filters := repositories.QuestionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if authorIDStr := c.Query("author_id"); authorIDStr != "" {
		if authorID, err := strconv.ParseUint(authorIDStr, 10, 32); err == nil {
			id := uint(authorID)
			filters.AuthorID = &id
		}
	}

	questions, err := h.questionService.List(c.Request.Context(), *actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// DeleteQuestion soft deletes a question; pinned versions stay readable
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting question", "question_id", id, "user_id", actor.UserID)

	if err := h.questionService.Delete(c.Request.Context(), *actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}
