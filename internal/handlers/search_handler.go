package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
)

// parsePage reads the optional page parameter. nil means "unpaginated".
func parsePage(c *gin.Context) (*int, bool) {
	raw, present := c.GetQuery("page")
	if !present {
		return nil, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Invalid page parameter"))
		return nil, false
	}
	return &page, true
}

// SearchEvents serves GET /events/search?city=&query=&page=. City is required;
// a query switches from browse mode to semantic ranking.
func SearchEvents(ss *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := parsePage(c)
		if !ok {
			return
		}

		events, err := ss.Search(c.Request.Context(), c.Query("city"), c.Query("query"), page)
		if err != nil {
			if errors.Is(err, services.ErrMissingCity) {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, page, len(events)))
	}
}

// FilterEvents serves GET /events/filter?key=&name=&page=. Key and name must
// appear in pairs; pairs are AND-combined.
func FilterEvents(ss *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		keys := c.QueryArray("key")
		names := c.QueryArray("name")

		if len(keys) != len(names) {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("The number of 'key' and 'name' parameters must match."))
			return
		}

		page, ok := parsePage(c)
		if !ok {
			return
		}

		pairs := make([]services.FilterPair, len(keys))
		for i := range keys {
			pairs[i] = services.FilterPair{Key: keys[i], Name: names[i]}
		}

		events, err := ss.Filter(c.Request.Context(), pairs, page)
		if err != nil {
			var perr *services.InvalidParameterError
			if errors.As(err, &perr) {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(perr.Msg))
				return
			}
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, page, len(events)))
	}
}
