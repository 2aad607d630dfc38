package todo

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo-backend/internal/auth"
)

// Handler translates service outcomes into transport responses. Error
// bodies use {"detail": ...} throughout.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the todo routes on an authenticated route group.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/todos", h.create)
	r.GET("/todos", h.list)
	r.PATCH("/todos/:id", h.update)
	r.DELETE("/todos/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authentication credentials"})
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request payload"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), req, subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authentication credentials"})
		return
	}

	todos, err := h.service.List(c.Request.Context(), subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *Handler) update(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authentication credentials"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid todo id"})
		return
	}

	var changes UpdateTodoRequest
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request payload"})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id.String(), changes, subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authentication credentials"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid todo id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id.String(), subject); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var invalid *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": invalid.Error()})
	default:
		h.logger.Error("todo request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
