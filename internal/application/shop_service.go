package application

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

type ShopService struct {
	Repo   repo.ShopRepository
	JWT    *helpers.JWTManager
	Media  MediaStore
	Mail   Notifier
	Ledger TokenLedger
	Links  Links
	Logger logrus.FieldLogger
}

func NewShopService(shops repo.ShopRepository, jwt *helpers.JWTManager, media MediaStore, mail Notifier, ledger TokenLedger, links Links, logger logrus.FieldLogger) *ShopService {
	return &ShopService{
		Repo:   shops,
		JWT:    jwt,
		Media:  media,
		Mail:   mail,
		Ledger: ledger,
		Links:  links,
		Logger: logger,
	}
}

type RegisterShopInput struct {
	Name        string
	Email       string
	Password    string
	Avatar      string // base64 data URI
	Address     string
	PhoneNumber string
	ZipCode     string
}

// Register mails an activation link carrying the candidate shop. The shop is
// stored only when the link is followed, so no inactive shops exist.
func (s *ShopService) Register(ctx context.Context, in RegisterShopInput) (string, error) {
	email := normalizeEmail(in.Email)
	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperror.ErrShopExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	avatar, err := uploadImage(ctx, s.Media, AvatarFolder, in.Avatar, "avatar")
	if err != nil {
		return "", err
	}

	pending := entity.PendingShop{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar,
		Address:      in.Address,
		PhoneNumber:  in.PhoneNumber,
		ZipCode:      in.ZipCode,
	}
	token, _, err := helpers.SignPayload(s.JWT.ActivationSecret, pending, s.JWT.ActivationTTL)
	if err != nil {
		return "", errors.Wrap(err, "sign activation token")
	}

	job := mailer.EmailJob{
		To:       email,
		Template: mailtpl.ActivateShop,
		Data: mailtpl.NewActivationData(s.Links.Branding, mailtpl.ActivateShop, in.Name, email,
			s.Links.ShopActivationURL+"/"+token, s.JWT.ActivationTTL),
	}
	if err := s.Mail.Notify(ctx, job); err != nil {
		discardImage(ctx, s.Media, s.Logger, avatar.PublicID, logrus.Fields{"email": email})
		return "", apperror.Upstream(err, "Failed to send activation email")
	}
	return email, nil
}

// Activate stores the shop as activated and logs it in. Replaying a link
// whose shop already exists fails with ErrShopActivated.
func (s *ShopService) Activate(ctx context.Context, token string) (*entity.Shop, Session, error) {
	claims, err := helpers.ParsePayload[entity.PendingShop](s.JWT.ActivationSecret, token)
	if err != nil {
		return nil, Session{}, tokenError(err)
	}
	p := claims.Payload
	if p.Email == "" || p.PasswordHash == "" {
		return nil, Session{}, apperror.ErrInvalidToken
	}

	exists, err := s.Repo.ExistsByEmail(ctx, p.Email)
	if err != nil {
		return nil, Session{}, err
	}
	if exists {
		return nil, Session{}, apperror.ErrShopActivated
	}

	shop := &entity.Shop{
		Name:        p.Name,
		Email:       p.Email,
		Password:    p.PasswordHash,
		Avatar:      p.Avatar,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
		ZipCode:     p.ZipCode,
		Role:        entity.RoleSeller,
		IsActivated: true,
	}
	if err := s.Repo.Create(ctx, shop); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, Session{}, apperror.ErrShopActivated
		}
		return nil, Session{}, err
	}
	shop.Password = ""

	sess, err := issueSession(s.JWT, shop.ID, entity.KindShop, shop.Role)
	if err != nil {
		return nil, Session{}, err
	}
	return shop, sess, nil
}

func (s *ShopService) Login(ctx context.Context, email, password string) (*entity.Shop, Session, error) {
	shop, err := s.Repo.GetByEmail(ctx, normalizeEmail(email), true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, Session{}, apperror.ErrShopNotFound
		}
		return nil, Session{}, err
	}
	if !helpers.CompareHashAndPassword(shop.Password, password) {
		return nil, Session{}, apperror.ErrInvalidCredentials
	}
	if !shop.IsActivated {
		return nil, Session{}, apperror.ErrShopNotActivated
	}
	shop.Password = ""

	sess, err := issueSession(s.JWT, shop.ID, entity.KindShop, shop.Role)
	if err != nil {
		return nil, Session{}, err
	}
	return shop, sess, nil
}

func (s *ShopService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Shop, error) {
	shop, err := s.Repo.GetByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

type UpdateShopInfoInput struct {
	Name        string
	Description string
	Address     string
	PhoneNumber string
	ZipCode     string
}

func (s *ShopService) UpdateInfo(ctx context.Context, id primitive.ObjectID, in UpdateShopInfoInput) (*entity.Shop, error) {
	shop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		shop.Name = in.Name
	}
	shop.Description = in.Description
	shop.Address = in.Address
	shop.PhoneNumber = in.PhoneNumber
	shop.ZipCode = in.ZipCode

	if err := s.Repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// UpdateAvatar follows the same upload, swap, delete order as users.
func (s *ShopService) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*entity.Shop, error) {
	shop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	img, err := uploadImage(ctx, s.Media, AvatarFolder, avatar, "avatar")
	if err != nil {
		return nil, err
	}

	old := shop.Avatar
	shop.Avatar = img
	if err := s.Repo.Update(ctx, shop); err != nil {
		discardImage(ctx, s.Media, s.Logger, img.PublicID, logrus.Fields{"shop_id": id.Hex()})
		return nil, err
	}
	if !old.IsZero() {
		discardImage(ctx, s.Media, s.Logger, old.PublicID, logrus.Fields{"shop_id": id.Hex()})
	}
	return shop, nil
}

// UpdateWithdrawMethod replaces the free-form payout descriptor. nil clears it.
func (s *ShopService) UpdateWithdrawMethod(ctx context.Context, id primitive.ObjectID, method map[string]any) (*entity.Shop, error) {
	shop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	shop.WithdrawMethod = method
	if err := s.Repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *ShopService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	shop, err := s.Repo.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("email", email).Debug("password reset requested for unknown shop")
			}
			return nil
		}
		return err
	}

	token, _, err := helpers.SignPayload(s.JWT.ResetSecret, resetPayload{ID: shop.ID.Hex(), Kind: entity.KindShop}, s.JWT.ResetTTL)
	if err != nil {
		return errors.Wrap(err, "sign reset token")
	}
	job := mailer.EmailJob{
		To:       shop.Email,
		Template: mailtpl.ResetPassword,
		Data:     mailtpl.NewResetPasswordData(s.Links.Branding, shop.Name, shop.Email, s.Links.ResetPasswordURL+"/"+token, s.JWT.ResetTTL),
	}
	if err := s.Mail.Notify(ctx, job); err != nil {
		helpers.LogError(s.Logger, "reset mail failed", err, logrus.Fields{"email": email, "kind": entity.KindShop})
	}
	return nil
}

func (s *ShopService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	id, claims, err := parseResetToken(s.JWT, token, entity.KindShop)
	if err != nil {
		return err
	}
	if err := checkNewPassword(newPassword, confirm); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := consumeResetToken(ctx, s.Ledger, claims); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.Repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.ErrShopNotFound
		}
		return err
	}
	return nil
}

func (s *ShopService) List(ctx context.Context) ([]entity.Shop, error) {
	return s.Repo.List(ctx)
}

// Delete removes the shop document, then its avatar (logged on failure).
func (s *ShopService) Delete(ctx context.Context, id primitive.ObjectID) error {
	shop, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.ErrShopNotFound
		}
		return err
	}
	discardImage(ctx, s.Media, s.Logger, shop.Avatar.PublicID, logrus.Fields{"shop_id": id.Hex()})
	return nil
}
