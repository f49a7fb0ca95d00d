package response

import (
	"github.com/gin-gonic/gin"

	"linkbio/internal/core/errs"
	"linkbio/pkg/dto"
)

// Abort records err for the Errors middleware and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Fail writes {err: msg} immediately.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorBody{Err: msg})
}

// Write renders err with its mapped status.
func Write(c *gin.Context, err error) {
	Fail(c, Status(errs.KindOf(err)), errs.Public(err))
}
