package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestBaseHandler() BaseHandler {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewBaseHandler(logger)
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrTestNotFound, http.StatusNotFound},
		{"question not in test", services.ErrQuestionNotInTest, http.StatusNotFound},
		{"question already in test", services.ErrQuestionAlreadyInTest, http.StatusBadRequest},
		{"empty test", services.ErrTestEmpty, http.StatusBadRequest},
		{"locked composition", services.ErrTestLocked, http.StatusConflict},
		{"inactive test", services.ErrTestNotActive, http.StatusConflict},
		{"finished attempt", services.ErrAttemptFinished, http.StatusConflict},
		{"self block", services.ErrSelfBlock, http.StatusConflict},
		{"blocked account", services.ErrAccountBlocked, http.StatusLocked},
		{"unauthorized", services.ErrUnauthorized, http.StatusUnauthorized},
	}

	h := newTestBaseHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.handleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandleServiceError_PermissionErrorNamesPermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestBaseHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.handleServiceError(c, services.NewPermissionError(42, 5, "test", "get", "course:test:read", "not enrolled"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "course:test:read")
}
