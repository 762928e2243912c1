package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

type ProductHandler struct {
	Svc *application.ProductService
}

func NewProductHandler(svc *application.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

type createProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Tags          string   `json:"tags"`
	OriginalPrice float64  `json:"originalPrice" binding:"gte=0"`
	DiscountPrice float64  `json:"discountPrice" binding:"required,gt=0"`
	Stock         int      `json:"stock" binding:"gte=0"`
	Images        []string `json:"images" binding:"required"`
	Beneficiary   string   `json:"beneficiary" binding:"required,beneficiary"`
}

type reviewRequest struct {
	ProductID string `json:"productId" binding:"required,objectid"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// Create POST /api/v2/product/create-product
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.CurrentSeller(c), application.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Tags:          req.Tags,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		Images:        req.Images,
		Beneficiary:   req.Beneficiary,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

// ListByShop GET /api/v2/product/get-all-products-shop/:id
func (h *ProductHandler) ListByShop(c *gin.Context) {
	shopID, ok := pathID(c, apperror.ErrShopNotFound)
	if !ok {
		return
	}
	products, err := h.Svc.ListByShop(c.Request.Context(), shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", gin.H{"count": len(products)})
}

// Delete DELETE /api/v2/product/delete-shop-product/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, apperror.ErrProductNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentSeller(c).ID, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Product deleted successfully!", nil)
}

// List GET /api/v2/product/get-all-products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", gin.H{"count": len(products)})
}

// Review PUT /api/v2/product/create-new-review
func (h *ProductHandler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		response.Fail(c, apperror.ErrProductNotFound)
		return
	}
	p, err := h.Svc.Review(c.Request.Context(), middleware.CurrentUser(c), application.ReviewInput{
		ProductID: pid,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Reviewed successfully!", nil)
}

// Search GET /api/v2/product/search?q=&size=
func (h *ProductHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	products, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", gin.H{"count": len(products)})
}
