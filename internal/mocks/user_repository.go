// Package mocks holds in-memory fakes and testify mocks of the application
// ports, shared by the service, middleware and router tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

// UserRepository is an in-memory repo.UserRepository with a unique email.
type UserRepository struct {
	mu    sync.Mutex
	rows  map[primitive.ObjectID]entity.User
	order []primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: map[primitive.ObjectID]entity.User{}}
}

func cloneUser(u entity.User, withPassword bool) *entity.User {
	u.Addresses = append([]entity.Address(nil), u.Addresses...)
	if !withPassword {
		u.Password = ""
	}
	return &u
}

func (r *UserRepository) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.rows {
		if u.Email == email && id != except {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, primitive.NilObjectID) {
		return repo.ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Addresses == nil {
		u.Addresses = []entity.Address{}
	}
	r.rows[u.ID] = *cloneUser(*u, true)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID, withPassword bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u, withPassword), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string, withPassword bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			return cloneUser(u, withPassword), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailTaken(email, primitive.NilObjectID), nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return repo.ErrDuplicate
	}
	next := *cloneUser(*u, true)
	next.Password = cur.Password
	next.CreatedAt = cur.CreatedAt
	r.rows[u.ID] = next
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	r.rows[id] = u
	return nil
}

// List returns users newest first, like the Mongo implementation.
func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.rows))
	for i := len(r.order) - 1; i >= 0; i-- {
		if u, ok := r.rows[r.order[i]]; ok {
			out = append(out, *cloneUser(u, false))
		}
	}
	return out, nil
}

func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// Len reports how many users are stored.
func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
