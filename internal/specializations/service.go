package specializations

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
		return apperr.NotFound("specialization", strconv.FormatInt(id, 10))
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("specialization already exists")
	default:
		return apperr.Storage("specializations "+op, err)
	}
}

func fromRequest(req UpsertRequest) models.Specialization {
	req.Normalize()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return models.Specialization{Name: req.Name, Description: req.Description, Icon: req.Icon, IsActive: active}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (models.Specialization, error) {
	item, err := s.repo.Create(ctx, fromRequest(req))
	return item, translate("create", 0, err)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (models.Specialization, error) {
	item, err := s.repo.Update(ctx, id, fromRequest(req))
	return item, translate("update", id, err)
}

// Delete does not touch doctors; their free-text specialization stays.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return translate("delete", id, err)
	}
	if !deleted {
		return translate("delete", id, ErrNotFound)
	}
	return nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (models.Specialization, error) {
	item, err := s.repo.Toggle(ctx, id)
	return item, translate("toggle", id, err)
}

func (s *Service) Get(ctx context.Context, id int64) (models.Specialization, error) {
	item, err := s.repo.GetByID(ctx, id)
	return item, translate("get", id, err)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Specialization, error) {
	items, err := s.repo.List(ctx, activeOnly)
	return items, translate("list", 0, err)
}
