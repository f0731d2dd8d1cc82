package patients

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

// Identity is what a booking knows about the person behind it.
type Identity struct {
	Name       string
	Email      string
	Phone      string
	TelegramID string
	Age        int
	Gender     string
}

func (i Identity) normalized() Identity {
	i.Name = strings.TrimSpace(i.Name)
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	i.Phone = strings.TrimSpace(i.Phone)
	i.TelegramID = strings.TrimSpace(i.TelegramID)
	i.Gender = strings.ToLower(strings.TrimSpace(i.Gender))
	return i
}

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
		ref := ""
		if id > 0 {
			ref = strconv.FormatInt(id, 10)
		}
		return apperr.NotFound("patient", ref)
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("contact details already belong to another patient")
	default:
		return apperr.Storage("patients "+op, err)
	}
}

// Resolve finds the patient by email, then phone, then telegram id and
// refreshes their contact fields, or inserts a new patient when none match.
func (s *Service) Resolve(ctx context.Context, who Identity) (models.Patient, error) {
	p, err := s.Match(ctx, who)
	if err != nil {
		return models.Patient{}, err
	}
	return s.Link(ctx, p, who)
}

// Match is the read-or-insert half of Resolve: an existing patient comes back
// unchanged.
func (s *Service) Match(ctx context.Context, who Identity) (models.Patient, error) {
	who = who.normalized()
	if who.Email == "" && who.Phone == "" && who.TelegramID == "" {
		return models.Patient{}, apperr.Required("patientPhone")
	}

	existing, err := s.lookup(ctx, who)
	if errors.Is(err, ErrNotFound) {
		created, err := s.repo.Create(ctx, toPatient(who))
		if !errors.Is(err, ErrDuplicate) {
			return created, translate("create", 0, err)
		}
		// lost an insert race
		existing, err = s.lookup(ctx, who)
		if err != nil {
			return models.Patient{}, translate("lookup", 0, err)
		}
	} else if err != nil {
		return models.Patient{}, translate("lookup", 0, err)
	}
	return existing, nil
}

// Link writes who's contact fields onto p, joining the web and chat
// identities of the same person.
func (s *Service) Link(ctx context.Context, p models.Patient, who Identity) (models.Patient, error) {
	updated, err := s.repo.UpdateContact(ctx, p.ID, toPatient(who.normalized()))
	if errors.Is(err, ErrDuplicate) {
		// a contact value belongs to another patient; keep the match as-is
		return p, nil
	}
	return updated, translate("update", p.ID, err)
}

func (s *Service) lookup(ctx context.Context, who Identity) (models.Patient, error) {
	finders := []struct {
		value string
		find  func(context.Context, string) (models.Patient, error)
	}{
		{who.Email, s.repo.FindByEmail},
		{who.Phone, s.repo.FindByPhone},
		{who.TelegramID, s.repo.FindByTelegramID},
	}
	for _, f := range finders {
		if f.value == "" {
			continue
		}
		p, err := f.find(ctx, f.value)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return p, err
	}
	return models.Patient{}, ErrNotFound
}

func toPatient(who Identity) models.Patient {
	return models.Patient{
		Name:       who.Name,
		Email:      who.Email,
		Phone:      who.Phone,
		TelegramID: who.TelegramID,
		Age:        who.Age,
		Gender:     who.Gender,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (models.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	return p, translate("get", id, err)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int64) ([]models.Patient, int64, error) {
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), limit, offset)
	return items, total, translate("list", 0, err)
}
