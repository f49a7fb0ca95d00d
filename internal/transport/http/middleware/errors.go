package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkbio/internal/core/errs"
	"linkbio/internal/transport/http/response"
)

// Errors renders the last error a stage or handler recorded with c.Error,
// unless something already wrote the response.
func Errors(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		e := errs.From(err)
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("kind", e.Kind.String()),
			zap.String("op", e.Op),
		}
		if e.Err != nil {
			fields = append(fields, zap.NamedError("cause", e.Err))
		}
		if e.Kind == errs.KindInternal {
			l.Error(e.Msg, fields...)
		} else {
			l.Debug(e.Msg, fields...)
		}
		if c.Writer.Written() {
			return
		}
		response.Write(c, err)
	}
}

var errMisconfigured = errors.New("middleware: prerequisite stage not mounted")
