package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-api/internal/usecase/user"
	pkgerrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// An id in the body is ignored.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email,max=254"`
}

// UpdateUserRequest represents the HTTP request body for replacing a user
type UpdateUserRequest struct {
	ID    int64  `json:"id" binding:"required,gt=0"`
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email,max=254"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// userNotFound is the plain-text body of every 404 answered by this handler
const userNotFound = "user not found"

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	_, err := h.uc.Add(c.Request.Context(), user.AddUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		log.Error("create user failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, true)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.uc.GetAll(c.Request.Context())
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("list users failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetByID(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(*u))
}

// Update handles PUT /users
func (h *UserHandler) Update(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.Update(c.Request.Context(), user.UpdateUserRequest{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		log.Error("update user failed", zap.Int64("id", req.ID), zap.Error(err))
		h.handleError(c, err)
		return
	}
	if !resp.Updated {
		c.String(http.StatusNotFound, userNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.Delete(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("delete user failed", zap.Int64("id", id), zap.Error(err))
		h.handleError(c, err)
		return
	}
	if !resp.Deleted {
		c.String(http.StatusNotFound, userNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseID reads the :id path segment. On failure it writes a 400 and returns false.
func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	switch status := pkgerrors.HTTPStatus(err); status {
	case http.StatusNotFound:
		c.String(http.StatusNotFound, userNotFound)
	case http.StatusBadRequest:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		})
	default:
		// Storage details stay in the logs
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
