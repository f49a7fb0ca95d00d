// Package api is a typed client for the linkbio HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Error is a non-2xx answer. Message is the server's {err} text when present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "HTTP " + strconv.Itoa(e.Status)
}

func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

type Client struct {
	BaseURL        string
	HTTP           *http.Client
	Tokens         TokenSource
	MaxAvatarBytes int64
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTP:           &http.Client{Timeout: 30 * time.Second},
		Tokens:         tokens,
		MaxAvatarBytes: 2 << 20,
	}
}

func (c *Client) Register(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", false, dto.Credentials{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", false, dto.Credentials{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, username string) (*dto.PublicProfile, error) {
	var out dto.PublicProfile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Links(ctx context.Context) ([]dto.Link, error) {
	var out []dto.Link
	if err := c.do(ctx, http.MethodGet, "/links", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLink(ctx context.Context, title, u string) (*dto.Link, error) {
	var out dto.Link
	if err := c.do(ctx, http.MethodPost, "/links", true, dto.LinkInput{Title: title, URL: u}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLink(ctx context.Context, id uint64, title, u string) (*dto.Link, error) {
	var out dto.Link
	if err := c.do(ctx, http.MethodPut, linkPath(id), true, dto.LinkInput{Title: title, URL: u}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLink(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, linkPath(id), true, nil, nil)
}

func (c *Client) UpdateTheme(ctx context.Context, theme string) (*dto.ThemeResult, error) {
	var out dto.ThemeResult
	if err := c.do(ctx, http.MethodPatch, "/users/theme", true, dto.ThemeInput{Theme: theme}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAvatar checks f against the shared image rules before sending it, so
// a rejected file never leaves the client.
func (c *Client) UploadAvatar(ctx context.Context, f media.File) (*dto.AvatarResult, error) {
	if err := media.Validate(f, c.MaxAvatarBytes); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, f.Name))
	h.Set("Content-Type", media.NormalizeType(f.ContentType))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/upload", true, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out dto.AvatarResult
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func linkPath(id uint64) string { return "/links/" + strconv.FormatUint(id, 10) }

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, authed, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, authed bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if authed && c.Tokens != nil {
		if tok := c.Tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res, raw)
	}
	if out == nil || res.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(res *http.Response, raw []byte) error {
	e := &Error{Status: res.StatusCode}
	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		var body dto.ErrorBody
		if json.Unmarshal(raw, &body) == nil {
			e.Message = body.Err
		}
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}
	return e
}
