package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"linkbio/internal/core/errs"
	"linkbio/internal/transport/http/reqctx"
	"linkbio/internal/transport/http/response"
	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

// bindMessage turns a binding failure into a client message. Missing or
// mistyped fields get fallback; length violations name the field.
func bindMessage(err error, fallback string) string {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return "Request body too large"
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Tag() == "max" {
				return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
			}
		}
		return fallback
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return fallback
	}
	if errors.Is(err, io.EOF) {
		return fallback
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return "Malformed JSON body"
	}
	return fallback
}

func ValidateCredentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.Credentials
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Abort(c, errs.BadRequest("middleware.ValidateCredentials",
				bindMessage(err, "Username and password are required")))
			return
		}
		if strings.TrimSpace(in.Username) == "" {
			response.Abort(c, errs.BadRequest("middleware.ValidateCredentials", "Username and password are required"))
			return
		}
		reqctx.From(c).Credentials = &in
		c.Next()
	}
}

func ValidateLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.LinkInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Abort(c, errs.BadRequest("middleware.ValidateLink", bindMessage(err, "Title and URL are required")))
			return
		}
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" {
			response.Abort(c, errs.BadRequest("middleware.ValidateLink", "Title and URL are required"))
			return
		}
		reqctx.From(c).LinkInput = &in
		c.Next()
	}
}

func ValidateTheme() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.ThemeInput
		if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Theme) == "" {
			msg := "Theme is required"
			if err != nil {
				msg = bindMessage(err, msg)
			}
			response.Abort(c, errs.BadRequest("middleware.ValidateTheme", msg))
			return
		}
		reqctx.From(c).ThemeInput = &in
		c.Next()
	}
}

type AvatarChecker interface {
	Check(f media.File) error
}

// ValidateAvatar reads the multipart field "avatar" (at most max+1 bytes) and
// runs the upload rules before any storage call.
func ValidateAvatar(check AvatarChecker, max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "middleware.ValidateAvatar"
		fh, err := c.FormFile("avatar")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				response.Abort(c, errs.BadRequest(op, "Request body too large"))
				return
			}
			response.Abort(c, errs.BadRequest(op, "No file uploaded"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Abort(c, errs.Internalf(op, "Failed to read upload", err))
			return
		}
		defer f.Close()

		r := io.Reader(f)
		if max > 0 {
			r = io.LimitReader(f, max+1)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			response.Abort(c, errs.Internalf(op, "Failed to read upload", err))
			return
		}
		file := media.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}
		if err := check.Check(file); err != nil {
			response.Abort(c, err)
			return
		}
		reqctx.From(c).Avatar = &file
		c.Next()
	}
}
