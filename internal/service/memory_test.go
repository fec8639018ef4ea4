package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/repository"
)

// memoryUserRepo is an in-memory UserRepository with the same contract
// as the Postgres implementation, unique (org, name) included.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[int64]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]domain.User)}
}

func (r *memoryUserRepo) GetByID(ctx context.Context, orgID, userID int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.OrgID != orgID {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByName(ctx context.Context, orgID int64, name string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.OrgID == orgID && user.Name == name {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *memoryUserRepo) List(ctx context.Context, orgID int64, filter repository.ListFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.OrgID != orgID {
			continue
		}
		if filter.Name != nil && user.Name != *filter.Name {
			continue
		}
		if filter.Email != nil && user.Email != *filter.Email {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		if filter.Availability != nil && user.Availability != *filter.Availability {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.NotAvailability != "" && user.Availability == filter.NotAvailability {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.OrgID == user.OrgID && existing.Name == user.Name {
			return domain.User{}, domain.ErrUserAlreadyRegistered
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, orgID, userID int64, patch repository.UserPatch) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.OrgID != orgID {
		return domain.User{}, domain.ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.Status != nil {
		user.Status = *patch.Status
	}
	if patch.Availability != nil {
		user.Availability = *patch.Availability
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return user, nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, orgID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *memoryUserRepo) TouchLastLogin(ctx context.Context, orgID, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.OrgID != orgID {
		return domain.ErrNotFound
	}
	user.LastLoginAt = &at
	r.users[userID] = user
	return nil
}

type memoryKeyRepo struct {
	mu   sync.Mutex
	keys map[int64]domain.SigningKey
}

func newMemoryKeyRepo() *memoryKeyRepo {
	return &memoryKeyRepo{keys: make(map[int64]domain.SigningKey)}
}

func (r *memoryKeyRepo) GetActiveKey(ctx context.Context, orgID int64) (domain.SigningKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[orgID]
	if !ok {
		return domain.SigningKey{}, domain.ErrNotFound
	}
	return key, nil
}

func (r *memoryKeyRepo) CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key.ID = int64(len(r.keys) + 1)
	r.keys[key.OrgID] = key
	return key, nil
}
