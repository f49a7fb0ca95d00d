package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"linkbio/internal/core/errs"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
)

type TokenVerifier interface {
	VerifyToken(token string) (uint64, error)
}

// Authenticate resolves the bearer token to a user id. A missing token is 401;
// a token that fails verification is whatever the verifier says (403).
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "middleware.Authenticate"
		ah := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(ah, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			response.Abort(c, errs.Unauthorized(op, "Unauthorized: No token provided"))
			return
		}
		uid, err := v.VerifyToken(token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		reqctx.From(c).UserID = uid
		c.Next()
	}
}
