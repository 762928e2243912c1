package mocks

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

// ShopRepository is an in-memory repo.ShopRepository.
type ShopRepository struct {
	mu    sync.Mutex
	rows  map[primitive.ObjectID]entity.Shop
	order []primitive.ObjectID
}

func NewShopRepository() *ShopRepository {
	return &ShopRepository{rows: map[primitive.ObjectID]entity.Shop{}}
}

func cloneShop(s entity.Shop, withPassword bool) *entity.Shop {
	if s.WithdrawMethod != nil {
		m := make(map[string]any, len(s.WithdrawMethod))
		for k, v := range s.WithdrawMethod {
			m[k] = v
		}
		s.WithdrawMethod = m
	}
	if !withPassword {
		s.Password = ""
	}
	return &s
}

func (r *ShopRepository) emailTaken(email string, except primitive.ObjectID) bool {
	for id, s := range r.rows {
		if s.Email == email && id != except {
			return true
		}
	}
	return false
}

func (r *ShopRepository) Create(_ context.Context, s *entity.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(s.Email, primitive.NilObjectID) {
		return repo.ErrDuplicate
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.rows[s.ID] = *cloneShop(*s, true)
	r.order = append(r.order, s.ID)
	return nil
}

func (r *ShopRepository) GetByID(_ context.Context, id primitive.ObjectID, withPassword bool) (*entity.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneShop(s, withPassword), nil
}

func (r *ShopRepository) GetByEmail(_ context.Context, email string, withPassword bool) (*entity.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.Email == email {
			return cloneShop(s, withPassword), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *ShopRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailTaken(email, primitive.NilObjectID), nil
}

func (r *ShopRepository) Update(_ context.Context, s *entity.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[s.ID]
	if !ok {
		return repo.ErrNotFound
	}
	next := *cloneShop(*s, true)
	next.Password = cur.Password
	next.CreatedAt = cur.CreatedAt
	r.rows[s.ID] = next
	return nil
}

func (r *ShopRepository) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	s.Password = hash
	r.rows[id] = s
	return nil
}

func (r *ShopRepository) List(_ context.Context) ([]entity.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Shop, 0, len(r.rows))
	for i := len(r.order) - 1; i >= 0; i-- {
		if s, ok := r.rows[r.order[i]]; ok {
			out = append(out, *cloneShop(s, false))
		}
	}
	return out, nil
}

func (r *ShopRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
