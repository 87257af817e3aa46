package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type envelope struct {
	Data      any    `json:"data"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

type errorEnvelope struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{
		Data:      data,
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(timestampLayout),
	})
}

func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	msg := err.Error()
	var details any

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status, code = http.StatusBadRequest, "validation_failed"
		details = verr.Fields
	case errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrMalformedGeofence),
		errors.Is(err, domain.ErrInvalidIncentive):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	default:
		msg = "internal server error"
	}

	c.JSON(status, errorEnvelope{
		Error:     msg,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC().Format(timestampLayout),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorEnvelope{
		Error:     msg,
		Code:      "invalid_request",
		Timestamp: time.Now().UTC().Format(timestampLayout),
	})
}

// paginate applies the mobile API's optional limit and offset parameters.
func paginate[T any](c *gin.Context, items []T) ([]T, bool) {
	offset, limit := 0, len(items)
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid offset parameter")
			return nil, false
		}
		offset = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit parameter")
			return nil, false
		}
		limit = n
	}
	if offset >= len(items) {
		return items[:0], true
	}
	if limit > len(items)-offset {
		limit = len(items) - offset
	}
	return items[offset : offset+limit], true
}
