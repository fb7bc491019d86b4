// README: Base handler utilities (response envelope, error mapping, path id checks).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"autometer/internal/modules/account"
	"autometer/internal/types"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeData(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Message: msg})
}

// writeServiceError maps the shared error taxonomy onto HTTP status codes.
// Unclassified errors are logged and reported as a generic 500.
func writeServiceError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		writeError(c, http.StatusBadRequest, types.Message(err))
	case errors.Is(err, types.ErrNotFound):
		writeError(c, http.StatusNotFound, types.Message(err))
	case errors.Is(err, types.ErrConflict):
		writeError(c, http.StatusConflict, types.Message(err))
	case errors.Is(err, types.ErrUnavailable):
		log.Error("store unavailable", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err.Error())
	default:
		log.Error("unhandled error", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// pathID returns the :id parameter or writes a 400 and returns false.
func pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	switch {
	case id == "" || id == "undefined" || id == "null":
		writeError(c, http.StatusBadRequest, "driver id is required")
		return "", false
	case !types.IsValidID(id):
		writeError(c, http.StatusBadRequest, "invalid driver id format")
		return "", false
	}
	return id, true
}

// bindJSON decodes the body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, bindMessage(err))
		return false
	}
	return true
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid json"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte", "min":
		return field + " must be at least " + fe.Param()
	case "lte", "max":
		return field + " must be at most " + fe.Param()
	}
	return field + " is invalid"
}
