package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/mocks"
)

type productFixture struct {
	svc    *ProductService
	repo   *mocks.ProductRepository
	media  *mocks.MediaStore
	shop   *entity.Shop
	logger *test.Hook
}

func newProductFixture(index ProductIndex) productFixture {
	logger, hook := testLogger()
	f := productFixture{
		repo:   mocks.NewProductRepository(),
		media:  mocks.NewMediaStore(),
		logger: hook,
		shop: &entity.Shop{
			ID:        primitive.NewObjectID(),
			Name:      "Corner Store",
			Avatar:    entity.Image{PublicID: "avatars/shop", URL: "https://media.test/avatars/shop"},
			CreatedAt: time.Now(),
		},
	}
	f.svc = NewProductService(f.repo, f.media, index, logger)
	return f
}

func productInput(name string, images int) CreateProductInput {
	in := CreateProductInput{
		Name:          name,
		Description:   "hand made",
		Category:      "Crafts",
		DiscountPrice: 10,
		Stock:         3,
		Beneficiary:   entity.BeneficiaryWomen,
	}
	for i := 0; i < images; i++ {
		in.Images = append(in.Images, testImage)
	}
	return in
}

func TestProductCreate(t *testing.T) {
	f := newProductFixture(nil)
	p, err := f.svc.Create(context.Background(), f.shop, productInput("Basket", 5))
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.Len(t, p.Images, entity.ProductImageCount)
	assert.Equal(t, f.shop.ID, p.ShopID)
	assert.Equal(t, f.shop.Snapshot(), p.Shop)
	assert.NotNil(t, p.Reviews)
	for _, img := range p.Images {
		assert.Contains(t, img.PublicID, ProductFolder+"/")
	}
}

func TestProductCreateRequiresFiveImages(t *testing.T) {
	f := newProductFixture(nil)
	for _, n := range []int{0, 4, 6} {
		_, err := f.svc.Create(context.Background(), f.shop, productInput("Basket", n))
		assert.ErrorIs(t, err, apperror.ErrImageCount, "%d images", n)
	}
	assert.Empty(t, f.media.Uploaded)
}

func TestProductCreateRejectsBadInput(t *testing.T) {
	f := newProductFixture(nil)

	in := productInput("Basket", 5)
	in.Beneficiary = "pets"
	_, err := f.svc.Create(context.Background(), f.shop, in)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	in = productInput("Basket", 5)
	in.Images[4] = "data:text/plain;base64,aGk="
	_, err = f.svc.Create(context.Background(), f.shop, in)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Empty(t, f.media.Uploaded, "validation happens before any upload")
}

func TestProductCreatePartialUploadIsRolledBack(t *testing.T) {
	f := newProductFixture(nil)
	f.media.UploadErr = errors.New("quota")
	f.media.FailAfter = 3

	_, err := f.svc.Create(context.Background(), f.shop, productInput("Basket", 5))
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	require.Len(t, f.media.Uploaded, 3)
	assert.ElementsMatch(t, []string{
		f.media.Uploaded[0].PublicID, f.media.Uploaded[1].PublicID, f.media.Uploaded[2].PublicID,
	}, f.media.DeletedIDs())

	all, _ := f.svc.List(context.Background())
	assert.Empty(t, all)
}

func TestProductCreateIndexes(t *testing.T) {
	idx := mocks.NewMockProductIndex(t)
	idx.On("Index", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(errors.New("es down")).Once()
	f := newProductFixture(idx)

	// an index failure does not fail the create
	_, err := f.svc.Create(context.Background(), f.shop, productInput("Basket", 5))
	assert.NoError(t, err)
}

func TestProductDelete(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, primitive.NewObjectID(), p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	assert.Empty(t, f.media.DeletedIDs())

	require.NoError(t, f.svc.Delete(ctx, f.shop.ID, p.ID))
	assert.Len(t, f.media.DeletedIDs(), entity.ProductImageCount)

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.shop.ID, p.ID), apperror.ErrProductNotFound)
}

func TestProductDeleteImageFailureIsLogged(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)
	f.media.DeleteErr = errors.New("gcs 500")

	require.NoError(t, f.svc.Delete(ctx, f.shop.ID, p.ID))
	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound, "document goes even when media cleanup fails")

	failed := 0
	for _, e := range f.logger.AllEntries() {
		if e.Message == "media delete failed" {
			assert.Equal(t, p.ID.Hex(), e.Data["product_id"])
			failed++
		}
	}
	assert.Equal(t, entity.ProductImageCount, failed)
}

func TestProductDeleteUnindexes(t *testing.T) {
	idx := mocks.NewMockProductIndex(t)
	idx.On("Index", mock.Anything, mock.Anything).Return(nil)
	f := newProductFixture(idx)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)

	idx.On("Delete", mock.Anything, p.ID.Hex()).Return(nil).Once()
	require.NoError(t, f.svc.Delete(ctx, f.shop.ID, p.ID))
}

func TestProductReviewUpsert(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)

	alice := &entity.User{ID: primitive.NewObjectID(), Name: "Alice"}
	bob := &entity.User{ID: primitive.NewObjectID(), Name: "Bob"}

	_, err = f.svc.Review(ctx, alice, ReviewInput{ProductID: p.ID, Rating: 5, Comment: "love it"})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, bob, ReviewInput{ProductID: p.ID, Rating: 3})
	require.NoError(t, err)
	got, err := f.svc.Review(ctx, alice, ReviewInput{ProductID: p.ID, Rating: 1, Comment: "broke"})
	require.NoError(t, err)

	assert.Len(t, got.Reviews, 2)
	assert.InDelta(t, 2.0, got.Ratings, 1e-9)

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, stored.Ratings, 1e-9)
	assert.Equal(t, "broke", stored.Reviews[0].Comment)

	_, err = f.svc.Review(ctx, alice, ReviewInput{ProductID: p.ID, Rating: 6})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = f.svc.Review(ctx, alice, ReviewInput{ProductID: primitive.NewObjectID(), Rating: 4})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestProductReviewConcurrentReviewersAreAllKept(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)

	const reviewers = 8
	var wg sync.WaitGroup
	errs := make(chan error, reviewers)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			u := &entity.User{ID: primitive.NewObjectID(), Name: "reviewer"}
			_, err := f.svc.Review(ctx, u, ReviewInput{ProductID: p.ID, Rating: rating})
			errs <- err
		}(i%5 + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Reviews, reviewers)
	// ratings 1,2,3,4,5,1,2,3
	assert.InDelta(t, 21.0/8.0, stored.Ratings, 1e-9)
}

func TestProductListByShop(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.shop, productInput("Basket", 5))
	require.NoError(t, err)
	other := &entity.Shop{ID: primitive.NewObjectID(), Name: "Other"}
	_, err = f.svc.Create(ctx, other, productInput("Vase", 5))
	require.NoError(t, err)

	mine, err := f.svc.ListByShop(ctx, f.shop.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Basket", mine[0].Name)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Vase", all[0].Name, "newest first")
}

func TestProductSearchMongoFallback(t *testing.T) {
	f := newProductFixture(nil)
	ctx := context.Background()
	for _, n := range []string{"Rattan Basket", "Clay Vase", "basket weaving kit"} {
		_, err := f.svc.Create(ctx, f.shop, productInput(n, 5))
		require.NoError(t, err)
	}

	got, err := f.svc.Search(ctx, "BASKET", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.svc.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProductSearchUsesIndexOrder(t *testing.T) {
	idx := mocks.NewMockProductIndex(t)
	idx.On("Index", mock.Anything, mock.Anything).Return(nil)
	f := newProductFixture(idx)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.shop, productInput("Rattan Basket", 5))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, f.shop, productInput("Basket weaving kit", 5))
	require.NoError(t, err)

	idx.On("Search", mock.Anything, "basket", 50).
		Return([]string{b.ID.Hex(), "not-an-id", a.ID.Hex()}, nil).Once()
	got, err := f.svc.Search(ctx, "basket", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	// oversize requests are clamped to the default; errors fall back to Mongo
	idx.On("Search", mock.Anything, "basket", defaultSearchSize).Return(nil, errors.New("es down")).Once()
	got, err = f.svc.Search(ctx, "basket", 500)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
