// Package memory provides an in-memory UserRepository guarded by a RWMutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/ftibo33/storefront/pkg/errors"

	"github.com/ftibo33/storefront/internal/user/domain"
)

// UserRepository stores users in process memory.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int]domain.User
	nextID int
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]domain.User),
		nextID: 1,
	}
}

// NewSeededUserRepository creates a repository pre-populated with demo users.
func NewSeededUserRepository() *UserRepository {
	r := NewUserRepository()
	now := time.Now().UTC()
	seed := []domain.User{
		{ID: 1, Name: "Jean Dupont", Email: "jean.dupont@example.com", CreatedAt: now},
		{ID: 2, Name: "Marie Martin", Email: "marie.martin@example.com", CreatedAt: now},
	}
	for _, u := range seed {
		r.users[u.ID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

// Create inserts a new user, assigning the next available ID.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID retrieves a user by its unique identifier.
func (r *UserRepository) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

// List returns all users ordered by ID.
func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Update replaces the stored record for the user's ID.
func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return apperrors.NotFound("user", user.ID)
	}
	user.CreatedAt = existing.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.NotFound("user", id)
	}
	delete(r.users, id)
	return nil
}
