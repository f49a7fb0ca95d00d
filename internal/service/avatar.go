package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"linkbio/internal/core/errs"
	"linkbio/internal/core/storage"
	"linkbio/internal/domain"
	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

var avatarUploads = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "avatar_uploads_total", Help: "Avatar uploads by result"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(avatarUploads) }

const (
	msgNoFile   = "No file uploaded"
	msgNotImage = "Only image files are allowed"
)

type AvatarService struct {
	users    domain.UserRepository
	bucket   storage.Bucket
	profiles Invalidator
	maxBytes int64
	now      func() time.Time
}

func NewAvatarService(users domain.UserRepository, bucket storage.Bucket, profiles Invalidator, maxBytes int64) *AvatarService {
	return &AvatarService{users: users, bucket: bucket, profiles: profiles, maxBytes: maxBytes, now: time.Now}
}

// Check applies the upload rules without touching storage.
func (s *AvatarService) Check(f media.File) error {
	const op = "avatar.Check"
	switch err := media.Validate(f, s.maxBytes); {
	case err == nil:
		return nil
	case errors.Is(err, media.ErrNoFile):
		return errs.BadRequest(op, msgNoFile)
	case errors.Is(err, media.ErrTooLarge):
		return errs.BadRequest(op, fmt.Sprintf("File too large (max %d bytes)", s.maxBytes))
	default:
		return errs.BadRequest(op, msgNotImage)
	}
}

func (s *AvatarService) Upload(ctx context.Context, userID uint64, f media.File) (*dto.AvatarResult, error) {
	const op = "avatar.Upload"
	if err := s.Check(f); err != nil {
		avatarUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ct := media.NormalizeType(f.ContentType)
	key := fmt.Sprintf("avatars/%d-%d%s", userID, s.now().UnixMilli(), media.ExtensionFor(f.Name, ct))
	if err := s.bucket.Put(ctx, key, ct, bytes.NewReader(f.Data), int64(len(f.Data))); err != nil {
		avatarUploads.WithLabelValues("failed").Inc()
		return nil, errs.Internalf(op, "Failed to upload image", err)
	}
	url := s.bucket.PublicURL(key)

	u, err := s.users.SetProfileImageURL(ctx, userID, url)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		avatarUploads.WithLabelValues("failed").Inc()
		return nil, errs.NotFound(op, "User not found")
	case err != nil:
		avatarUploads.WithLabelValues("failed").Inc()
		return nil, errs.Internalf(op, "Failed to save profile image", err)
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, userID)
	}
	avatarUploads.WithLabelValues("ok").Inc()
	return &dto.AvatarResult{User: u.Public(), ProfileImageURL: url}, nil
}
