package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkbio/internal/core/server"
	"linkbio/internal/service"
	"linkbio/internal/transport/http/handler"
	mdw "linkbio/internal/transport/http/middleware"
	"linkbio/internal/transport/http/response"
)

type Options struct {
	Mode           string
	BasePath       string
	RequestTimeout time.Duration
	MaxInFlight    int64
	MaxBodyBytes   int64
	MaxAvatarBytes int64
	CORSOrigins    []string
	// Files serves uploaded objects under /files when storage is in-process.
	Files http.Handler
	// Ready lists dependencies checked by GET /ready.
	Ready map[string]handler.Pinger
}

type Deps struct {
	Log      *zap.Logger
	Auth     *service.AuthService
	Links    *service.LinkService
	Profiles *service.ProfileService
	Themes   *service.ThemeService
	Avatars  *service.AvatarService
	Options  Options
}

func NewAPIEngine(d Deps) *gin.Engine {
	o := d.Options
	if o.BasePath == "" {
		o.BasePath = "/api"
	}
	r := server.NewRouter(d.Log, server.Options{Mode: o.Mode, CORSOrigins: o.CORSOrigins})

	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.Recovery(d.Log),
		mdw.Errors(d.Log),
		mdw.Timeout(o.RequestTimeout),
		mdw.ConcurrencyLimit(o.MaxInFlight),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
	)

	health := handler.NewHealthHandler(o.Ready)
	r.GET("/health", health.Live)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if o.Files != nil {
		r.GET("/files/*key", gin.WrapH(http.StripPrefix("/files", o.Files)))
	}
	r.NoRoute(func(c *gin.Context) { response.Fail(c, http.StatusNotFound, "Not found") })

	authn := mdw.Authenticate(d.Auth)
	MountAll(r.Group(o.BasePath),
		health,
		handler.NewAuthHandler(d.Auth),
		handler.NewLinkHandler(d.Links, authn),
		handler.NewProfileHandler(d.Profiles),
		handler.NewThemeHandler(d.Themes, authn),
		handler.NewAvatarHandler(d.Avatars, authn, o.MaxAvatarBytes),
	)
	return r
}
