package service

import (
	"context"
	"errors"
	"strings"

	"linkbio/internal/core/errs"
	"linkbio/internal/domain"
	"linkbio/pkg/dto"
)

const msgNotOwner = "Forbidden: Not the owner of this link"

type LinkService struct {
	links    domain.LinkRepository
	profiles Invalidator
}

func NewLinkService(links domain.LinkRepository, profiles Invalidator) *LinkService {
	return &LinkService{links: links, profiles: profiles}
}

func (s *LinkService) ListOwn(ctx context.Context, userID uint64) ([]dto.Link, error) {
	links, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Internalf("links.ListOwn", "Failed to get links", err)
	}
	out := make([]dto.Link, 0, len(links))
	for i := range links {
		out = append(out, links[i].DTO())
	}
	return out, nil
}

func (s *LinkService) Create(ctx context.Context, userID uint64, in dto.LinkInput) (*dto.Link, error) {
	const op = "links.Create"
	title, url, err := cleanLink(op, in)
	if err != nil {
		return nil, err
	}
	l := &domain.Link{UserID: userID, Title: title, URL: url}
	if err := s.links.Create(ctx, l); err != nil {
		return nil, errs.Internalf(op, "Failed to create a link", err)
	}
	s.invalidate(ctx, userID)
	out := l.DTO()
	return &out, nil
}

// Get loads a link for the ownership check.
func (s *LinkService) Get(ctx context.Context, id uint64) (*domain.Link, error) {
	const op = "links.Get"
	l, err := s.links.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, errs.NotFound(op, "Link not found")
	case err != nil:
		return nil, errs.Internalf(op, "Failed to get the link", err)
	}
	return l, nil
}

// Update expects a link resolved by Get; ownership is checked again here.
func (s *LinkService) Update(ctx context.Context, userID uint64, l *domain.Link, in dto.LinkInput) (*dto.Link, error) {
	const op = "links.Update"
	if !l.OwnedBy(userID) {
		return nil, errs.Forbidden(op, msgNotOwner)
	}
	title, url, err := cleanLink(op, in)
	if err != nil {
		return nil, err
	}
	upd := *l
	upd.Title, upd.URL = title, url
	switch err := s.links.Update(ctx, &upd); {
	case errors.Is(err, domain.ErrNotFound):
		return nil, errs.NotFound(op, "Link not found")
	case err != nil:
		return nil, errs.Internalf(op, "Failed to update the link", err)
	}
	s.invalidate(ctx, userID)
	out := upd.DTO()
	return &out, nil
}

func (s *LinkService) Delete(ctx context.Context, userID uint64, l *domain.Link) error {
	const op = "links.Delete"
	if !l.OwnedBy(userID) {
		return errs.Forbidden(op, msgNotOwner)
	}
	switch err := s.links.Delete(ctx, l.ID); {
	case errors.Is(err, domain.ErrNotFound):
		return errs.NotFound(op, "Link not found")
	case err != nil:
		return errs.Internalf(op, "Failed to delete the link", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *LinkService) invalidate(ctx context.Context, userID uint64) {
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, userID)
	}
}

func cleanLink(op string, in dto.LinkInput) (string, string, error) {
	title, url := strings.TrimSpace(in.Title), strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return "", "", errs.BadRequest(op, "Title and URL are required")
	}
	return title, url, nil
}
