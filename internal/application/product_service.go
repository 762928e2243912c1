package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type ProductService struct {
	Repo   repo.ProductRepository
	Media  MediaStore
	Index  ProductIndex // nil disables Elasticsearch; search falls back to Mongo
	Logger logrus.FieldLogger
}

func NewProductService(products repo.ProductRepository, media MediaStore, index ProductIndex, logger logrus.FieldLogger) *ProductService {
	return &ProductService{Repo: products, Media: media, Index: index, Logger: logger}
}

type CreateProductInput struct {
	Name          string
	Description   string
	Category      string
	Tags          string
	OriginalPrice float64
	DiscountPrice float64
	Stock         int
	Images        []string // base64 data URIs
	Beneficiary   string
}

// Create uploads the five images and stores the product under shop. If any
// upload fails the images already stored are removed again.
func (s *ProductService) Create(ctx context.Context, shop *entity.Shop, in CreateProductInput) (*entity.Product, error) {
	if len(in.Images) != entity.ProductImageCount {
		return nil, apperror.ErrImageCount
	}
	if !entity.IsBeneficiary(in.Beneficiary) {
		return nil, apperror.Validation("Invalid beneficiary category")
	}

	decoded := make([]*helpers.DataURI, 0, len(in.Images))
	for _, raw := range in.Images {
		img, err := helpers.ParseImageDataURI(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid product image")
		}
		decoded = append(decoded, img)
	}

	images := make([]entity.Image, 0, len(decoded))
	for _, img := range decoded {
		out, err := s.Media.Upload(ctx, ProductFolder, img)
		if err != nil {
			s.discardAll(ctx, images, logrus.Fields{"shop_id": shop.ID.Hex()})
			return nil, apperror.Upstream(err, "Failed to upload product images")
		}
		images = append(images, out)
	}

	p := &entity.Product{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Tags:          in.Tags,
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        images,
		Reviews:       []entity.Review{},
		ShopID:        shop.ID,
		Shop:          shop.Snapshot(),
		Beneficiary:   in.Beneficiary,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		s.discardAll(ctx, images, logrus.Fields{"shop_id": shop.ID.Hex()})
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.Index(ctx, p); err != nil {
			helpers.LogError(s.Logger, "index product failed", err, logrus.Fields{"product_id": p.ID.Hex()})
		}
	}
	return p, nil
}

func (s *ProductService) discardAll(ctx context.Context, images []entity.Image, fields logrus.Fields) {
	for _, img := range images {
		discardImage(ctx, s.Media, s.Logger, img.PublicID, fields)
	}
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) ListByShop(ctx context.Context, shopID primitive.ObjectID) ([]entity.Product, error) {
	return s.Repo.ListByShop(ctx, shopID)
}

func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	return s.Repo.List(ctx)
}

// Delete removes a product owned by shopID. The document goes first; image
// and index cleanup afterwards are best effort and only logged.
func (s *ProductService) Delete(ctx context.Context, shopID, productID primitive.ObjectID) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.ShopID != shopID {
		return apperror.ErrForbidden.WithMessage("You can only delete your own products")
	}

	if err := s.Repo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.ErrProductNotFound
		}
		return err
	}

	s.discardAll(ctx, p.Images, logrus.Fields{"product_id": productID.Hex()})

	if s.Index != nil {
		if err := s.Index.Delete(ctx, productID.Hex()); err != nil {
			helpers.LogError(s.Logger, "unindex product failed", err, logrus.Fields{"product_id": productID.Hex()})
		}
	}
	return nil
}

type ReviewInput struct {
	ProductID primitive.ObjectID
	Rating    int
	Comment   string
}

// Review adds or replaces the user's review and recomputes the rating.
func (s *ProductService) Review(ctx context.Context, u *entity.User, in ReviewInput) (*entity.Product, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.Validation("Rating must be between 1 and 5")
	}
	p, err := s.Repo.UpsertReview(ctx, in.ProductID, entity.Review{
		User:      entity.ReviewerSnapshot{ID: u.ID, Name: u.Name, Avatar: u.Avatar},
		Rating:    in.Rating,
		Comment:   in.Comment,
		ProductID: in.ProductID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Search finds products by text. Elasticsearch is used when configured and
// healthy; otherwise a case-insensitive name match runs on Mongo.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]entity.Product, error) {
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	if q == "" {
		return []entity.Product{}, nil
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, size)
		if err == nil {
			return s.byIDs(ctx, ids)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es product search failed; falling back to mongo")
		}
	}
	return s.Repo.SearchByName(ctx, q, size)
}

// byIDs loads products and keeps the order of ids.
func (s *ProductService) byIDs(ctx context.Context, hexIDs []string) ([]entity.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		if id, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, id)
		}
	}
	found, err := s.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]entity.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]entity.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
