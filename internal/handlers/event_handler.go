package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
)

// actingUser pulls the authenticated claims set by the auth middleware.
func actingUser(c *gin.Context) (*helpers.Claims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := userClaims.(*helpers.Claims)
	if !ok {
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, helpers.ApiResponse{
			Success: false,
			Error:   "validation failed",
			Data:    verr.Fields,
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrAlreadyJoined),
		errors.Is(err, models.ErrNotJoined):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse(err.Error()))
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		var req models.CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		event, err := es.CreateEvent(c.Request.Context(), claims.UserID, req)
		if err != nil {
			writeDomainError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(event, "Event created successfully"))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := es.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}

// UpdateEvent serves both PUT (full) and PATCH (partial).
func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		var req models.UpdateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		partial := c.Request.Method == http.MethodPatch
		event, err := es.UpdateEvent(c.Request.Context(), c.Param("id"), claims.UserID, req, partial)
		if err != nil {
			writeDomainError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(event, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		if err := es.DeleteEvent(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
			writeDomainError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func JoinEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		if err := es.JoinEvent(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Successfully joined the event."))
	}
}

func LeaveEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		if err := es.LeaveEvent(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Successfully left the event."))
	}
}

// CancelEvent toggles the cancelled flag; ?reverse=true reactivates.
func CancelEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		id := c.Param("id")
		reverse := c.Query("reverse") == "true"

		if err := es.SetCancelled(c.Request.Context(), id, claims.UserID, !reverse); err != nil {
			writeDomainError(c, err)
			return
		}

		if reverse {
			c.JSON(http.StatusOK, helpers.SuccessResponse(nil, fmt.Sprintf("Event %s activated.", id)))
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, fmt.Sprintf("Event %s cancelled.", id)))
	}
}

func ListCreatedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		events, err := es.ListCreatedBy(c.Request.Context(), claims.UserID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(events, ""))
	}
}

func ListJoinedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := actingUser(c)
		if !ok {
			return
		}

		events, err := es.ListJoinedBy(c.Request.Context(), claims.UserID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(events, ""))
	}
}

func RandomEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.RandomEvents(c.Request.Context(), services.PageSize)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(events, ""))
	}
}
