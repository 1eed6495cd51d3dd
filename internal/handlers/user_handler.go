package handlers

import (
	"net/http"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	users, err := h.userService.List(c.Request.Context(), *actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetFullName(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req services.SetFullNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Setting full name", "target_user_id", id, "user_id", actor.UserID)

	if err := h.userService.SetFullName(c.Request.Context(), *actor, id, req.FullName); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Full name updated"})
}

// ===== ROLES =====

func (h *UserHandler) GetRoles(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	roles, err := h.userService.Roles(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

type setRolesRequest struct {
	Roles []models.Role `json:"roles" validate:"required,dive,role"`
}

func (h *UserHandler) SetRoles(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req setRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Setting roles",
		"target_user_id", id, "roles", req.Roles, "user_id", actor.UserID)

	if err := h.userService.SetRoles(c.Request.Context(), *actor, id, req.Roles); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Roles updated"})
}

// ===== BLOCKING =====

func (h *UserHandler) GetBlocked(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	blocked, err := h.userService.GetBlocked(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UserHandler) SetBlocked(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Setting blocked flag",
		"target_user_id", id, "blocked", req.Blocked, "user_id", actor.UserID)

	if err := h.userService.SetBlocked(c.Request.Context(), *actor, id, req.Blocked); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Blocked flag updated"})
}

// GetUserData aggregates the user's courses and attempted tests
func (h *UserHandler) GetUserData(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	data, err := h.userService.UserData(c.Request.Context(), *actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
