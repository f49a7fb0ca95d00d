package middleware

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkbio/internal/core/errs"
	"linkbio/internal/transport/http/response"
)

// Recovery logs the panic with its stack and answers with the generic error.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		response.Fail(c, http.StatusInternalServerError, errs.GenericMessage)
	})
}
