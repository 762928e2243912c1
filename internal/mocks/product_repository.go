package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

// ProductRepository is an in-memory repo.ProductRepository.
type ProductRepository struct {
	mu    sync.Mutex
	rows  map[primitive.ObjectID]entity.Product
	order []primitive.ObjectID
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{rows: map[primitive.ObjectID]entity.Product{}}
}

func cloneProduct(p entity.Product) entity.Product {
	p.Images = append([]entity.Image(nil), p.Images...)
	p.Reviews = append([]entity.Review(nil), p.Reviews...)
	return p
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.rows[p.ID] = cloneProduct(*p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.rows[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// filter walks newest first and keeps what keep accepts, up to limit (0 = all).
func (r *ProductRepository) filter(keep func(entity.Product) bool, limit int) []entity.Product {
	out := []entity.Product{}
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.rows[r.order[i]]
		if !ok || !keep(p) {
			continue
		}
		out = append(out, cloneProduct(p))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (r *ProductRepository) ListByShop(_ context.Context, shopID primitive.ObjectID) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(p entity.Product) bool { return p.ShopID == shopID }, 0), nil
}

func (r *ProductRepository) List(_ context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(entity.Product) bool { return true }, 0), nil
}

func (r *ProductRepository) SearchByName(_ context.Context, q string, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(q)
	return r.filter(func(p entity.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	}, limit), nil
}

func (r *ProductRepository) UpsertReview(_ context.Context, id primitive.ObjectID, rev entity.Review) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cur = cloneProduct(cur)
	cur.UpsertReview(rev)
	r.rows[id] = cur
	out := cloneProduct(cur)
	return &out, nil
}

func (r *ProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
