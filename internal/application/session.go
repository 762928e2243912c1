package application

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// Session is an issued session token and its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// resetPayload is embedded in password reset tokens.
type resetPayload struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func issueSession(jwt *helpers.JWTManager, id primitive.ObjectID, kind, role string) (Session, error) {
	tok, exp, err := jwt.GenerateSessionToken(id.Hex(), kind, role)
	if err != nil {
		return Session{}, errors.Wrap(err, "sign session token")
	}
	return Session{Token: tok, ExpiresAt: exp}, nil
}

// tokenError maps a token verification failure to the API error.
func tokenError(err error) error {
	if errors.Is(err, helpers.ErrTokenExpired) {
		return apperror.ErrTokenExpired
	}
	return apperror.ErrInvalidToken
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseID converts a hex id from a path or payload.
func ParseID(hex string, notFound error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}

func uploadImage(ctx context.Context, media MediaStore, folder, dataURI, field string) (entity.Image, error) {
	img, err := helpers.ParseImageDataURI(dataURI)
	if err != nil {
		return entity.Image{}, apperror.Validation("Invalid " + field + " image")
	}
	out, err := media.Upload(ctx, folder, img)
	if err != nil {
		return entity.Image{}, apperror.Upstream(err, "Failed to upload "+field)
	}
	return out, nil
}

// discardImage deletes an asset whose failure must not fail the request.
func discardImage(ctx context.Context, media MediaStore, logger logrus.FieldLogger, publicID string, fields logrus.Fields) {
	if err := media.Delete(ctx, publicID); err != nil {
		if fields == nil {
			fields = logrus.Fields{}
		}
		fields["public_id"] = publicID
		helpers.LogError(logger, "media delete failed", err, fields)
	}
}

// parseResetToken verifies a reset token issued for kind.
func parseResetToken(jwt *helpers.JWTManager, token, kind string) (primitive.ObjectID, *helpers.PayloadClaims[resetPayload], error) {
	claims, err := helpers.ParsePayload[resetPayload](jwt.ResetSecret, token)
	if err != nil {
		return primitive.NilObjectID, nil, tokenError(err)
	}
	if claims.Payload.Kind != kind {
		return primitive.NilObjectID, nil, apperror.ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.Payload.ID)
	if err != nil {
		return primitive.NilObjectID, nil, apperror.ErrInvalidToken
	}
	return id, claims, nil
}

// consumeResetToken burns the token id so the link works once.
func consumeResetToken(ctx context.Context, ledger TokenLedger, claims *helpers.PayloadClaims[resetPayload]) error {
	if ledger == nil {
		return nil
	}
	ok, err := ledger.Consume(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
	if err != nil {
		return errors.Wrap(err, "consume reset token")
	}
	if !ok {
		return apperror.ErrInvalidToken
	}
	return nil
}

func checkNewPassword(newPassword, confirm string) error {
	if newPassword != confirm {
		return apperror.ErrPasswordMismatch
	}
	if len(newPassword) < 6 {
		return apperror.Validation("Password must be at least 6 characters")
	}
	return nil
}
