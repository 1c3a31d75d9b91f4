package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
)

type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorHandler renders the last error recorded with c.Error. Stacks are only
// included in development.
func ErrorHandler(log *zap.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var e *apperr.Error
		if !errors.As(last.Err, &e) {
			log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(last.Err))
			c.JSON(http.StatusInternalServerError, errorBody{Message: "Internal server error"})
			return
		}
		if e.Kind == apperr.KindInternal {
			log.Error(e.Message, zap.String("path", c.FullPath()), zap.Error(e.Err))
		}

		body := errorBody{Message: e.Message}
		if development {
			body.Stack = e.Stack()
		}
		c.JSON(e.Kind.Status(), body)
	}
}
