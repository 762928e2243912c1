package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

type ShopHandler struct {
	Svc     *application.ShopService
	Cookies *helpers.Manager
}

func NewShopHandler(svc *application.ShopService, cookies *helpers.Manager) *ShopHandler {
	return &ShopHandler{Svc: svc, Cookies: cookies}
}

type createShopRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	Avatar      string `json:"avatar" binding:"required,datauri_image"`
	Address     string `json:"address" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	ZipCode     string `json:"zipCode" binding:"required"`
}

type updateSellerInfoRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	ZipCode     string `json:"zipCode" binding:"required"`
}

type withdrawMethodRequest struct {
	WithdrawMethod map[string]any `json:"withdrawMethod" binding:"required"`
}

// CreateShop POST /api/v2/shop/create-shop
func (h *ShopHandler) CreateShop(c *gin.Context) {
	var req createShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	email, err := h.Svc.Register(c.Request.Context(), application.RegisterShopInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Avatar:      req.Avatar,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		ZipCode:     req.ZipCode,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"email": email},
		fmt.Sprintf("please check your email:- %s to activate your shop!", email), nil)
}

// Activate POST /api/v2/shop/activation
func (h *ShopHandler) Activate(c *gin.Context) {
	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	shop, sess, err := h.Svc.Activate(c.Request.Context(), req.ActivationToken)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.SetSession(c, helpers.SellerCookie, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{"user": shop, "token": sess.Token}, "shop activated", nil)
}

// Login POST /api/v2/shop/login-shop
func (h *ShopHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	shop, sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.SetSession(c, helpers.SellerCookie, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{"user": shop, "token": sess.Token}, "login successful", nil)
}

// Me GET /api/v2/shop/getSeller
func (h *ShopHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.CurrentSeller(c), "seller", nil)
}

// Logout GET /api/v2/shop/logout
func (h *ShopHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c, helpers.SellerCookie)
	response.Success[any](c, http.StatusOK, nil, "Log out successful!", nil)
}

// Info GET /api/v2/shop/get-shop-info/:id
func (h *ShopHandler) Info(c *gin.Context) {
	id, ok := pathID(c, apperror.ErrShopNotFound)
	if !ok {
		return
	}
	shop, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop, "shop", nil)
}

// UpdateAvatar PUT /api/v2/shop/update-shop-avatar
func (h *ShopHandler) UpdateAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	shop, err := h.Svc.UpdateAvatar(c.Request.Context(), middleware.CurrentSeller(c).ID, req.Avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop, "avatar updated", nil)
}

// UpdateInfo PUT /api/v2/shop/update-seller-info
func (h *ShopHandler) UpdateInfo(c *gin.Context) {
	var req updateSellerInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	shop, err := h.Svc.UpdateInfo(c.Request.Context(), middleware.CurrentSeller(c).ID, application.UpdateShopInfoInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		ZipCode:     req.ZipCode,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop, "shop info updated", nil)
}

// UpdatePaymentMethods PUT /api/v2/shop/update-payment-methods
func (h *ShopHandler) UpdatePaymentMethods(c *gin.Context) {
	var req withdrawMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	shop, err := h.Svc.UpdateWithdrawMethod(c.Request.Context(), middleware.CurrentSeller(c).ID, req.WithdrawMethod)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop, "withdraw method updated", nil)
}

// DeleteWithdrawMethod DELETE /api/v2/shop/delete-withdraw-method
func (h *ShopHandler) DeleteWithdrawMethod(c *gin.Context) {
	shop, err := h.Svc.UpdateWithdrawMethod(c.Request.Context(), middleware.CurrentSeller(c).ID, nil)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop, "withdraw method deleted", nil)
}

// AdminList GET /api/v2/shop/admin-all-sellers
func (h *ShopHandler) AdminList(c *gin.Context) {
	shops, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, shops, "sellers", gin.H{"count": len(shops)})
}

// AdminDelete DELETE /api/v2/shop/delete-seller/:id
func (h *ShopHandler) AdminDelete(c *gin.Context) {
	id, ok := pathID(c, apperror.ErrShopNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Seller deleted successfully!", nil)
}

// ForgotPassword POST /api/v2/shop/forgot-password
func (h *ShopHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, forgotPasswordMessage, nil)
}

// ResetPassword POST /api/v2/shop/reset-password
func (h *ShopHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully!", nil)
}
