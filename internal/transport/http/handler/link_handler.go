package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkbio/internal/service"
	"linkbio/internal/transport/http/middleware"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
)

type LinkHandler struct {
	svc  *service.LinkService
	auth gin.HandlerFunc
}

func NewLinkHandler(svc *service.LinkService, auth gin.HandlerFunc) *LinkHandler {
	return &LinkHandler{svc: svc, auth: auth}
}

func (h *LinkHandler) Priority() int { return 20 }

// MountAPI wires validate -> authenticate -> resolve -> own before every mutation.
func (h *LinkHandler) MountAPI(g *gin.RouterGroup) {
	links := g.Group("/links")
	links.GET("", h.auth, h.List)
	links.POST("", middleware.ValidateLink(), h.auth, h.Create)
	links.PUT("/:linkId", middleware.ValidateLink(), h.auth,
		middleware.LoadLink(h.svc), middleware.RequireLinkOwner(), h.Update)
	links.DELETE("/:linkId", h.auth,
		middleware.LoadLink(h.svc), middleware.RequireLinkOwner(), h.Delete)
}

func (h *LinkHandler) List(c *gin.Context) {
	out, err := h.svc.ListOwn(c.Request.Context(), reqctx.From(c).UserID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *LinkHandler) Create(c *gin.Context) {
	s := reqctx.From(c)
	out, err := h.svc.Create(c.Request.Context(), s.UserID, *s.LinkInput)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *LinkHandler) Update(c *gin.Context) {
	s := reqctx.From(c)
	out, err := h.svc.Update(c.Request.Context(), s.UserID, s.Link, *s.LinkInput)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	s := reqctx.From(c)
	if err := h.svc.Delete(c.Request.Context(), s.UserID, s.Link); err != nil {
		response.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
