package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// pathID parses the :id route parameter. A malformed id is reported as
// notFound, the same as a well-formed id that matches nothing.
func pathID(c *gin.Context, notFound error) (primitive.ObjectID, bool) {
	id, err := application.ParseID(c.Param("id"), notFound)
	if err != nil {
		response.Fail(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

type activationRequest struct {
	ActivationToken string `json:"activation_token" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" binding:"required,datauri_image"`
}

const forgotPasswordMessage = "If an account exists for this email, a password reset link has been sent"
