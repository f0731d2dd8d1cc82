package doctors

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type Service struct {
	repo   Repository
	policy VisibilityPolicy
}

func NewService(repo Repository, policy VisibilityPolicy) *Service {
	return &Service{repo: repo, policy: policy}
}

func (s *Service) translate(op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("doctor", idString(id))
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("doctor email already exists")
	default:
		return apperr.Storage("doctors "+op, err)
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (models.Doctor, error) {
	req.Normalize()
	d, err := s.repo.Create(ctx, req.toDoctor())
	return d, s.translate("create", 0, err)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (models.Doctor, error) {
	req.Normalize()
	d, err := s.repo.Update(ctx, id, req.toDoctor())
	return d, s.translate("update", id, err)
}

// Delete removes the doctor row. Appointments keep their copy of the data
// and lose only the reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.translate("delete", id, err)
	}
	if !deleted {
		return apperr.NotFound("doctor", idString(id))
	}
	return nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (models.Doctor, error) {
	d, err := s.repo.Toggle(ctx, id)
	return d, s.translate("toggle", id, err)
}

func (s *Service) Get(ctx context.Context, id int64) (models.Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	return d, s.translate("get", id, err)
}

// FindByName accepts display names with or without a "Dr." prefix.
func (s *Service) FindByName(ctx context.Context, name string) (models.Doctor, error) {
	name = StripTitle(name)
	if name == "" {
		return models.Doctor{}, apperr.Required("doctor")
	}
	d, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return models.Doctor{}, apperr.NotFound("doctor", name)
	}
	return d, s.translate("find", 0, err)
}

// ListActive is the unrestricted informational listing.
func (s *Service) ListActive(ctx context.Context) ([]models.Doctor, error) {
	items, err := s.repo.List(ctx, ListFilter{ActiveOnly: true})
	return items, s.translate("list", 0, err)
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter) ([]models.Doctor, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	items, err := s.repo.List(ctx, filter)
	return items, s.translate("list", 0, err)
}

// ListBySpecialization is the booking lookup: active doctors of the
// specialization, narrowed to the on-call allow-list, falling back to the
// configured fallback doctor, else empty.
func (s *Service) ListBySpecialization(ctx context.Context, specialization string) ([]models.Doctor, error) {
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return s.ListActive(ctx)
	}
	matches, err := s.repo.List(ctx, ListFilter{Specialization: specialization, ActiveOnly: true})
	if err != nil {
		return nil, s.translate("list", 0, err)
	}
	if !s.policy.Enabled() {
		return matches, nil
	}
	if onCall := s.policy.OnCall(matches); len(onCall) > 0 {
		return onCall, nil
	}
	if s.policy.FallbackKeyword == "" {
		return []models.Doctor{}, nil
	}
	fallback, err := s.repo.FindActiveByNameFragment(ctx, s.policy.FallbackKeyword)
	if errors.Is(err, ErrNotFound) {
		return []models.Doctor{}, nil
	}
	if err != nil {
		return nil, s.translate("fallback", 0, err)
	}
	return []models.Doctor{fallback}, nil
}

func StripTitle(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	for _, prefix := range []string{"dr. ", "dr.", "dr "} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(name[len(prefix):])
		}
	}
	return name
}

func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
