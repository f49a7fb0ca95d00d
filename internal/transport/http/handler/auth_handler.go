package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkbio/internal/transport/http/middleware"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
	"linkbio/pkg/dto"
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (*dto.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*dto.AuthResponse, error)
}

type AuthHandler struct {
	svc Authenticator
}

func NewAuthHandler(svc Authenticator) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	a := g.Group("/auth")
	a.POST("/register", middleware.ValidateCredentials(), h.Register)
	a.POST("/login", middleware.ValidateCredentials(), h.Login)
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := reqctx.From(c).Credentials
	res, err := h.svc.Register(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	in := reqctx.From(c).Credentials
	res, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
