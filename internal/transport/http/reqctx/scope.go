// Package reqctx holds the typed per-request values the middleware chain fills in.
package reqctx

import (
	"github.com/gin-gonic/gin"

	"linkbio/internal/domain"
	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

const key = "linkbio.scope"

// Scope is populated stage by stage: validated payloads, then identity, then
// resolved resources. A zero field means its stage has not run.
type Scope struct {
	Credentials *dto.Credentials
	LinkInput   *dto.LinkInput
	ThemeInput  *dto.ThemeInput
	Avatar      *media.File

	UserID uint64

	Link    *domain.Link
	Profile *domain.User
}

func (s *Scope) Authenticated() bool { return s.UserID != 0 }

// From returns the request's scope, creating it on first use.
func From(c *gin.Context) *Scope {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(*Scope); ok {
			return s
		}
	}
	s := &Scope{}
	c.Set(key, s)
	return s
}
