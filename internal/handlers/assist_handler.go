package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
)

// ImproveDescription serves POST /events/improve: rewrite or propose an event
// description with the chat model.
func ImproveDescription(as *services.AssistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := actingUser(c); !ok {
			return
		}

		var req models.ImproveDescriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		improved, err := as.ImproveDescription(c.Request.Context(), req.Title, req.Description)
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(verr.Error()))
				return
			}
			c.JSON(http.StatusBadGateway, helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"improved_description": improved}, ""))
	}
}
