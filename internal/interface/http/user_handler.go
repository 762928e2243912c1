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

type UserHandler struct {
	Svc     *application.UserService
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, cookies *helpers.Manager) *UserHandler {
	return &UserHandler{Svc: svc, Cookies: cookies}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Avatar   string `json:"avatar" binding:"required,datauri_image"`
}

type updateUserInfoRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required"`
}

type addressRequest struct {
	ID          string `json:"_id"`
	Country     string `json:"country" binding:"required"`
	City        string `json:"city" binding:"required"`
	Address1    string `json:"address1" binding:"required"`
	Address2    string `json:"address2"`
	ZipCode     string `json:"zipCode" binding:"required"`
	AddressType string `json:"addressType" binding:"required"`
}

type updatePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// CreateUser POST /api/v2/user/create-user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	email, err := h.Svc.Register(c.Request.Context(), application.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"email": email},
		fmt.Sprintf("please check your email:- %s to activate your account!", email), nil)
}

// Activate POST /api/v2/user/activation
func (h *UserHandler) Activate(c *gin.Context) {
	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	u, sess, err := h.Svc.Activate(c.Request.Context(), req.ActivationToken)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.SetSession(c, helpers.UserCookie, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{"user": u, "token": sess.Token}, "account activated", nil)
}

// Login POST /api/v2/user/login-user
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	u, sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.SetSession(c, helpers.UserCookie, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{"user": u, "token": sess.Token}, "login successful", nil)
}

// Me GET /api/v2/user/getuser
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.CurrentUser(c), "user", nil)
}

// Logout GET /api/v2/user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c, helpers.UserCookie)
	response.Success[any](c, http.StatusOK, nil, "Log out successful!", nil)
}

// UpdateInfo PUT /api/v2/user/update-user-info
func (h *UserHandler) UpdateInfo(c *gin.Context) {
	var req updateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	u, err := h.Svc.UpdateInfo(c.Request.Context(), middleware.CurrentUser(c).ID, application.UpdateUserInfoInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user info updated", nil)
}

// UpdateAvatar PUT /api/v2/user/update-avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	u, err := h.Svc.UpdateAvatar(c.Request.Context(), middleware.CurrentUser(c).ID, req.Avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "avatar updated", nil)
}

// UpdateAddresses PUT /api/v2/user/update-user-addresses
func (h *UserHandler) UpdateAddresses(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	u, err := h.Svc.UpdateAddress(c.Request.Context(), middleware.CurrentUser(c).ID, application.AddressInput{
		ID:          req.ID,
		Country:     req.Country,
		City:        req.City,
		Address1:    req.Address1,
		Address2:    req.Address2,
		ZipCode:     req.ZipCode,
		AddressType: req.AddressType,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "address saved", nil)
}

// DeleteAddress DELETE /api/v2/user/delete-user-address/:id
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	addrID, ok := pathID(c, apperror.ErrAddressNotFound)
	if !ok {
		return
	}
	u, err := h.Svc.DeleteAddress(c.Request.Context(), middleware.CurrentUser(c).ID, addrID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "address deleted", nil)
}

// UpdatePassword PUT /api/v2/user/update-user-password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	err := h.Svc.UpdatePassword(c.Request.Context(), middleware.CurrentUser(c).ID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password updated successfully!", nil)
}

// Info GET /api/v2/user/user-info/:id
func (h *UserHandler) Info(c *gin.Context) {
	id, ok := pathID(c, apperror.ErrUserNotFound)
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// AdminList GET /api/v2/user/admin-all-users
func (h *UserHandler) AdminList(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}

// AdminDelete DELETE /api/v2/user/delete-user/:id
func (h *UserHandler) AdminDelete(c *gin.Context) {
	id, ok := pathID(c, apperror.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "User deleted successfully!", nil)
}

// ForgotPassword POST /api/v2/user/forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
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

// ResetPassword POST /api/v2/user/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
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
