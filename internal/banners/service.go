package banners

import (
	"context"
	"errors"
	"strconv"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func translate(op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("banner", strconv.FormatInt(id, 10))
	default:
		return apperr.Storage("banners "+op, err)
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (models.Banner, error) {
	req.Normalize()
	b, err := s.repo.Create(ctx, req.toBanner())
	return b, translate("create", 0, err)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (models.Banner, error) {
	req.Normalize()
	b, err := s.repo.Update(ctx, id, req.toBanner())
	return b, translate("update", id, err)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err == nil && !deleted {
		err = ErrNotFound
	}
	return translate("delete", id, err)
}

func (s *Service) Toggle(ctx context.Context, id int64) (models.Banner, error) {
	b, err := s.repo.Toggle(ctx, id)
	return b, translate("toggle", id, err)
}

func (s *Service) Get(ctx context.Context, id int64) (models.Banner, error) {
	b, err := s.repo.GetByID(ctx, id)
	return b, translate("get", id, err)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	items, err := s.repo.List(ctx, activeOnly)
	return items, translate("list", 0, err)
}
