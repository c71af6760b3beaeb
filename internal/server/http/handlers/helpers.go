package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/server/http/dto"
	"github.com/polkiloo/uniformorders/internal/server/http/middleware"
)

// CurrentPrincipal extracts the authenticated caller from context.
func CurrentPrincipal(c *gin.Context) model.Principal {
	principal, _ := middleware.Principal(c)
	return principal
}

// respondError maps domain failures to HTTP statuses. Conflicts carry the
// fresh order so clients can adopt it without a second request.
func respondError(c *gin.Context, err error) {
	var conflict *domainErrors.ConflictError
	switch {
	case errors.As(err, &conflict):
		current := dto.FromOrder(conflict.Current)
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: domainErrors.Message(err), Order: &current})
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: domainErrors.Message(err)})
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Already exists."})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: domainErrors.Message(err)})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.Message(err)})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: domainErrors.GenericMessage})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message})
}
