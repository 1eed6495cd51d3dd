package handlers

import (
	"net/http"

	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	testService    services.TestService
	attemptService services.AttemptService
	gradingService services.GradingService
}

func NewTestHandler(testService services.TestService, attemptService services.AttemptService, gradingService services.GradingService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler:    NewBaseHandler(logger),
		testService:    testService,
		attemptService: attemptService,
		gradingService: gradingService,
	}
}

func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *TestHandler) SetActive(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Setting test activity",
		"test_id", id, "active", req.Active, "user_id", actor.UserID)

	if err := h.testService.SetActive(c.Request.Context(), *actor, id, req.Active); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test updated"})
}

func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting test", "test_id", id, "user_id", actor.UserID)

	if err := h.testService.Delete(c.Request.Context(), *actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test deleted"})
}

// ===== COMPOSITION =====

func (h *TestHandler) ListQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	questions, err := h.testService.Questions(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

func (h *TestHandler) AddQuestion(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
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
	h.LogRequest(c, "Adding question to test",
		"test_id", testID, "question_id", questionID, "user_id", actor.UserID)

	position, err := h.testService.AddQuestion(c.Request.Context(), *actor, testID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"position": position})
}

func (h *TestHandler) RemoveQuestion(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
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
	h.LogRequest(c, "Removing question from test",
		"test_id", testID, "question_id", questionID, "user_id", actor.UserID)

	if err := h.testService.RemoveQuestion(c.Request.Context(), *actor, testID, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question removed"})
}

type reorderRequest struct {
	Order []uint `json:"order" validate:"required,min=1"`
}

func (h *TestHandler) ReorderQuestions(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Reordering test questions", "test_id", testID, "user_id", actor.UserID)

	if err := h.testService.Reorder(c.Request.Context(), *actor, testID, req.Order); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions reordered"})
}

// ===== ATTEMPT VIEWS =====

func (h *TestHandler) ListAttempts(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListByTest(c.Request.Context(), *actor, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

func (h *TestHandler) GetStats(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	stats, err := h.gradingService.TestStats(c.Request.Context(), *actor, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportGrades streams the test's grades as an .xlsx workbook
func (h *TestHandler) ExportGrades(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Exporting grades", "test_id", testID, "user_id", actor.UserID)

	data, err := h.gradingService.ExportGrades(c.Request.Context(), *actor, testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=grades.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
