package handlers

import (
	"net/http"

	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	gradingService services.GradingService
}

func NewAttemptHandler(attemptService services.AttemptService, gradingService services.GradingService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		gradingService: gradingService,
	}
}

// StartAttempt starts (or idempotently returns) the actor's attempt on a test
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Starting attempt", "test_id", testID, "user_id", actor.UserID)

	attempt, err := h.attemptService.Start(c.Request.Context(), *actor, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// FinishAttempt transitions the attempt to finished; repeat calls are no-ops
func (h *AttemptHandler) FinishAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Finishing attempt", "attempt_id", id, "user_id", actor.UserID)

	attempt, err := h.attemptService.Finish(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ===== ANSWERS =====

type setAnswerRequest struct {
	AnswerIndex int `json:"answer_index" validate:"gte=0"`
}

func (h *AttemptHandler) SetAnswer(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req setAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	err := h.attemptService.SetAnswer(c.Request.Context(), *actor, attemptID, questionID, req.AnswerIndex)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

func (h *AttemptHandler) ClearAnswer(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	err := h.attemptService.ClearAnswer(c.Request.Context(), *actor, attemptID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer cleared"})
}

func (h *AttemptHandler) ListAnswers(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	answers, err := h.attemptService.ListAnswers(c.Request.Context(), *actor, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// ===== GRADING =====

func (h *AttemptHandler) GetGrade(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	grade, err := h.gradingService.Grade(c.Request.Context(), *actor, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *AttemptHandler) GetReview(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	review, err := h.gradingService.Review(c.Request.Context(), *actor, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}
