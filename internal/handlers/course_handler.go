package handlers

import (
	"net/http"

	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	testService   services.TestService
}

func NewCourseHandler(courseService services.CourseService, testService services.TestService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		testService:   testService,
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Creating course", "user_id", actor.UserID)

	var req services.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), *actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	courses, err := h.courseService.List(c.Request.Context(), *actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Updating course", "course_id", id, "user_id", actor.UserID)

	var req services.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), *actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting course", "course_id", id, "user_id", actor.UserID)

	if err := h.courseService.Delete(c.Request.Context(), *actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

// ===== ENROLLMENT =====

func (h *CourseHandler) EnrollUser(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Enrolling user",
		"course_id", courseID, "target_user_id", userID, "user_id", actor.UserID)

	if err := h.courseService.Enroll(c.Request.Context(), *actor, courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User enrolled"})
}

func (h *CourseHandler) UnenrollUser(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Unenrolling user",
		"course_id", courseID, "target_user_id", userID, "user_id", actor.UserID)

	if err := h.courseService.Unenroll(c.Request.Context(), *actor, courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User unenrolled"})
}

func (h *CourseHandler) ListStudents(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	students, err := h.courseService.Students(c.Request.Context(), *actor, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// ===== COURSE TESTS =====

func (h *CourseHandler) CreateTest(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Creating test", "course_id", courseID, "user_id", actor.UserID)

	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	test, err := h.testService.Create(c.Request.Context(), *actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

func (h *CourseHandler) ListTests(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	tests, err := h.testService.ListByCourse(c.Request.Context(), *actor, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}
