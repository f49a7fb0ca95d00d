package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkbio/internal/core/errs"
	"linkbio/internal/domain"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
)

type LinkFinder interface {
	Get(ctx context.Context, id uint64) (*domain.Link, error)
}

type ProfileFinder interface {
	Resolve(ctx context.Context, username string) (*domain.User, error)
}

// LoadLink resolves :linkId. Ids that cannot exist are reported as not found.
func LoadLink(f LinkFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("linkId"), 10, 64)
		if err != nil || id == 0 {
			response.Abort(c, errs.NotFound("middleware.LoadLink", "Link not found"))
			return
		}
		l, err := f.Get(c.Request.Context(), id)
		if err != nil {
			response.Abort(c, err)
			return
		}
		reqctx.From(c).Link = l
		c.Next()
	}
}

func LoadProfile(f ProfileFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := f.Resolve(c.Request.Context(), c.Param("username"))
		if err != nil {
			response.Abort(c, err)
			return
		}
		reqctx.From(c).Profile = u
		c.Next()
	}
}

// RequireLinkOwner must follow Authenticate and LoadLink; without them it fails closed.
func RequireLinkOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "middleware.RequireLinkOwner"
		s := reqctx.From(c)
		if !s.Authenticated() || s.Link == nil {
			response.Abort(c, errs.Internalf(op, errs.GenericMessage, errMisconfigured))
			return
		}
		if !s.Link.OwnedBy(s.UserID) {
			response.Abort(c, errs.Forbidden(op, "Forbidden: Not the owner of this link"))
			return
		}
		c.Next()
	}
}
