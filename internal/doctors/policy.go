package doctors

import (
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

// VisibilityPolicy restricts specialization-filtered listings to on-call
// doctors. Matching is a case-insensitive substring test on the name.
type VisibilityPolicy struct {
	OnCallKeywords  []string
	FallbackKeyword string
}

func NewVisibilityPolicy(onCall []string, fallback string) VisibilityPolicy {
	kws := make([]string, 0, len(onCall))
	for _, k := range onCall {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	return VisibilityPolicy{
		OnCallKeywords:  kws,
		FallbackKeyword: strings.ToLower(strings.TrimSpace(fallback)),
	}
}

// Enabled is false when no allow-list is configured; listings are then
// returned unrestricted.
func (p VisibilityPolicy) Enabled() bool {
	return len(p.OnCallKeywords) > 0
}

func (p VisibilityPolicy) IsOnCall(name string) bool {
	name = strings.ToLower(name)
	for _, k := range p.OnCallKeywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// OnCall keeps the candidates that match the allow-list, in order.
func (p VisibilityPolicy) OnCall(candidates []models.Doctor) []models.Doctor {
	out := make([]models.Doctor, 0, len(candidates))
	for _, d := range candidates {
		if p.IsOnCall(d.Name) {
			out = append(out, d)
		}
	}
	return out
}
