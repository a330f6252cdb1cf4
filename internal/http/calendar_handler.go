package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// listCalendar defaults to the current month when no range is given.
func (h *Handler) listCalendar(c *gin.Context) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid from")
			return
		}
		from = parsed
		if c.Query("to") == "" {
			to = from.AddDate(0, 1, 0)
		}
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid to")
			return
		}
		to = parsed
	}

	rows, err := h.calendar.List(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}
