package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkbio/internal/service"
	"linkbio/internal/transport/http/middleware"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
)

// ProfileHandler serves the public page; no authentication.
type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Priority() int { return 30 }

func (h *ProfileHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/users/:username", middleware.LoadProfile(h.svc), h.Get)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.svc.Public(c.Request.Context(), reqctx.From(c).Profile)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type ThemeHandler struct {
	svc  *service.ThemeService
	auth gin.HandlerFunc
}

func NewThemeHandler(svc *service.ThemeService, auth gin.HandlerFunc) *ThemeHandler {
	return &ThemeHandler{svc: svc, auth: auth}
}

func (h *ThemeHandler) Priority() int { return 40 }

func (h *ThemeHandler) MountAPI(g *gin.RouterGroup) {
	g.PATCH("/users/theme", middleware.ValidateTheme(), h.auth, h.Update)
}

func (h *ThemeHandler) Update(c *gin.Context) {
	s := reqctx.From(c)
	out, err := h.svc.Update(c.Request.Context(), s.UserID, s.ThemeInput.Theme)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type AvatarHandler struct {
	svc      *service.AvatarService
	auth     gin.HandlerFunc
	maxBytes int64
}

func NewAvatarHandler(svc *service.AvatarService, auth gin.HandlerFunc, maxBytes int64) *AvatarHandler {
	return &AvatarHandler{svc: svc, auth: auth, maxBytes: maxBytes}
}

func (h *AvatarHandler) Priority() int { return 50 }

// Identity runs first so anonymous uploads are never buffered.
func (h *AvatarHandler) MountAPI(g *gin.RouterGroup) {
	g.POST("/users/upload", h.auth, middleware.ValidateAvatar(h.svc, h.maxBytes), h.Upload)
}

func (h *AvatarHandler) Upload(c *gin.Context) {
	s := reqctx.From(c)
	out, err := h.svc.Upload(c.Request.Context(), s.UserID, *s.Avatar)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
