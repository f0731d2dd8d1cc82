// Package dashboard serves the admin statistics and the data exports.
package dashboard

import (
	"context"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
)

const recentLimit = 10

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return Stats{}, apperr.Storage("dashboard stats", err)
	}
	recent, err := s.repo.RecentAppointments(ctx, recentLimit)
	if err != nil {
		return Stats{}, apperr.Storage("dashboard recent", err)
	}
	stats.RecentAppointments = recent
	return stats, nil
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	doctors, err := s.repo.Doctors(ctx)
	if err != nil {
		return Snapshot{}, apperr.Storage("export doctors", err)
	}
	patients, err := s.repo.Patients(ctx)
	if err != nil {
		return Snapshot{}, apperr.Storage("export patients", err)
	}
	items, err := s.repo.Appointments(ctx)
	if err != nil {
		return Snapshot{}, apperr.Storage("export appointments", err)
	}
	return Snapshot{
		GeneratedAt:  s.now().In(s.loc),
		Doctors:      doctors,
		Patients:     patients,
		Appointments: items,
	}, nil
}

func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}
