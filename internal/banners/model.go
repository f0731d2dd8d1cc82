package banners

import (
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type UpsertRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,url"`
	Link        string `json:"link"`
	ButtonLink  string `json:"buttonLink"`
	ButtonText  string `json:"buttonText"`
	Order       int    `json:"order" validate:"gte=0"`
	IsActive    *bool  `json:"isActive"`
}

// Normalize folds the buttonLink alias into Link.
func (r *UpsertRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Image = strings.TrimSpace(r.Image)
	r.Link = strings.TrimSpace(r.Link)
	if r.Link == "" {
		r.Link = strings.TrimSpace(r.ButtonLink)
	}
	r.ButtonLink = ""
	r.ButtonText = strings.TrimSpace(r.ButtonText)
	if r.ButtonText == "" && r.Link != "" {
		r.ButtonText = "Learn More"
	}
}

func (r UpsertRequest) toBanner() models.Banner {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Banner{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.Image,
		Link:        r.Link,
		ButtonText:  r.ButtonText,
		SortOrder:   r.Order,
		IsActive:    active,
	}
}
