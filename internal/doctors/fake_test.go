package doctors

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	doctors map[int64]models.Doctor
	err     error
}

func newMemRepo(seed ...models.Doctor) *memRepo {
	r := &memRepo{doctors: map[int64]models.Doctor{}}
	for _, d := range seed {
		r.nextID++
		if d.ID == 0 {
			d.ID = r.nextID
		}
		r.doctors[d.ID] = d
	}
	return r
}

func (r *memRepo) Create(ctx context.Context, d models.Doctor) (models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return models.Doctor{}, r.err
	}
	for _, existing := range r.doctors {
		if d.Email != "" && strings.EqualFold(existing.Email, d.Email) {
			return models.Doctor{}, ErrDuplicate
		}
	}
	r.nextID++
	d.ID = r.nextID
	r.doctors[d.ID] = d
	return d, nil
}

func (r *memRepo) Update(ctx context.Context, id int64, d models.Doctor) (models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return models.Doctor{}, ErrNotFound
	}
	d.ID = id
	r.doctors[id] = d
	return d, nil
}

func (r *memRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.doctors[id]
	delete(r.doctors, id)
	return ok, nil
}

func (r *memRepo) Toggle(ctx context.Context, id int64) (models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return models.Doctor{}, ErrNotFound
	}
	d.IsActive = !d.IsActive
	r.doctors[id] = d
	return d, nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return models.Doctor{}, r.err
	}
	d, ok := r.doctors[id]
	if !ok {
		return models.Doctor{}, ErrNotFound
	}
	return d, nil
}

func (r *memRepo) FindByName(ctx context.Context, name string) (models.Doctor, error) {
	for _, d := range r.sorted() {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return models.Doctor{}, ErrNotFound
}

func (r *memRepo) FindActiveByNameFragment(ctx context.Context, fragment string) (models.Doctor, error) {
	for _, d := range r.sorted() {
		if d.IsActive && strings.Contains(strings.ToLower(d.Name), strings.ToLower(fragment)) {
			return d, nil
		}
	}
	return models.Doctor{}, ErrNotFound
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) ([]models.Doctor, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Doctor, 0)
	for _, d := range r.sorted() {
		if filter.ActiveOnly && !d.IsActive {
			continue
		}
		if filter.Specialization != "" && !strings.EqualFold(d.Specialization, filter.Specialization) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memRepo) sorted() []models.Doctor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
