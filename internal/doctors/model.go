package doctors

import (
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

// UpsertRequest is the admin payload. Language/ProfilePicture are accepted
// spellings from older clients and are folded into Languages/Image by
// Normalize.
type UpsertRequest struct {
	Name             string   `json:"name" validate:"required,min=2"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Phone            string   `json:"phone" validate:"omitempty,phone"`
	Specialization   string   `json:"specialization" validate:"required"`
	SpecializationID *int64   `json:"specializationId" validate:"omitempty,gt=0"`
	Qualification    string   `json:"qualification"`
	Experience       int      `json:"experience" validate:"gte=0,lte=80"`
	ConsultationFee  float64  `json:"consultationFee" validate:"gte=0"`
	OPDTimings       string   `json:"opdTimings"`
	Languages        []string `json:"languages"`
	Language         []string `json:"language"`
	Bio              string   `json:"bio"`
	Image            string   `json:"image" validate:"omitempty,url"`
	ProfilePicture   string   `json:"profilePicture" validate:"omitempty,url"`
	IsActive         *bool    `json:"isActive"`
}

func (r *UpsertRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Specialization = strings.TrimSpace(r.Specialization)
	if len(r.Languages) == 0 && len(r.Language) > 0 {
		r.Languages = r.Language
	}
	r.Language = nil
	langs := make([]string, 0, len(r.Languages))
	for _, l := range r.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	r.Languages = langs
	if r.Image == "" {
		r.Image = strings.TrimSpace(r.ProfilePicture)
	}
	r.ProfilePicture = ""
}

func (r UpsertRequest) toDoctor() models.Doctor {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Doctor{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Specialization:   r.Specialization,
		SpecializationID: r.SpecializationID,
		Qualification:    strings.TrimSpace(r.Qualification),
		ExperienceYears:  r.Experience,
		ConsultationFee:  r.ConsultationFee,
		OPDTimings:       strings.TrimSpace(r.OPDTimings),
		Languages:        r.Languages,
		Bio:              strings.TrimSpace(r.Bio),
		ImageURL:         r.Image,
		IsActive:         active,
	}
}

type ListFilter struct {
	Specialization string
	Search         string
	ActiveOnly     bool
}
