// README: Panic recovery middleware; logs the panic and answers with the JSON error envelope.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"panic", r,
					"route", c.FullPath(),
					"request_id", RequestIDFrom(c),
					"stack", string(debug.Stack()),
				)
				abort(c, http.StatusInternalServerError, "internal error")
			}
		}()
		c.Next()
	}
}
