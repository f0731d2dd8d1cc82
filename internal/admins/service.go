package admins

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/auth"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

var ErrInvalidCredentials = errors.New("admins: invalid credentials")

// DefaultSettings is served until an admin saves the hospital settings.
var DefaultSettings = models.HospitalSettings{
	Name:         "Sree Sarojaa Multi Specialty Dental Clinic",
	Address:      "Near Vincent Bus Stop, Cherry Road, Kumaraswamypatti, Salem 636007",
	Phone:        "0427 2313339, 8946088182",
	Email:        "sreesarojaa@dental.com",
	WorkingHours: "Mon-Fri 08:00-21:00, Sat 09:00-18:00, Sun closed",
}

type Service struct {
	repo     Repository
	defaults models.HospitalSettings
}

func NewService(repo Repository, defaults models.HospitalSettings) *Service {
	return &Service{repo: repo, defaults: defaults}
}

func translate(op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("admin", strconv.FormatInt(id, 10))
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("email already in use")
	default:
		return apperr.Storage("admins "+op, err)
	}
}

func (s *Service) Register(ctx context.Context, email, fullName, password string) (models.Admin, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Admin{}, apperr.Validation("password", err.Error())
	}
	a, err := s.repo.Create(ctx, models.Admin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		IsActive:     true,
	})
	return a, translate("register", 0, err)
}

// Authenticate returns ErrInvalidCredentials for unknown, inactive or
// wrong-password accounts alike.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return models.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Admin{}, translate("login", 0, err)
	}
	if !a.IsActive || auth.ComparePassword(a.PasswordHash, password) != nil {
		return models.Admin{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) Profile(ctx context.Context, id int64) (models.Admin, error) {
	a, err := s.repo.GetByID(ctx, id)
	return a, translate("profile", id, err)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, fullName, email string) (models.Admin, error) {
	a, err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(fullName), strings.ToLower(strings.TrimSpace(email)))
	return a, translate("update profile", id, err)
}

func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate("change password", id, err)
	}
	if auth.ComparePassword(a.PasswordHash, current) != nil {
		return apperr.Validation("currentPassword", "is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Validation("newPassword", err.Error())
	}
	return translate("change password", id, s.repo.UpdatePassword(ctx, id, hash))
}

func (s *Service) Settings(ctx context.Context) (models.HospitalSettings, error) {
	settings, err := s.repo.Settings(ctx)
	if errors.Is(err, ErrNotFound) {
		return s.defaults, nil
	}
	return settings, translate("settings", 0, err)
}

func (s *Service) SaveSettings(ctx context.Context, settings models.HospitalSettings) (models.HospitalSettings, error) {
	out, err := s.repo.SaveSettings(ctx, settings)
	return out, translate("save settings", 0, err)
}
