package application

import (
	"context"
	"fmt"

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

type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Media  MediaStore
	Mail   Notifier
	Ledger TokenLedger
	Links  Links
	Logger logrus.FieldLogger
}

func NewUserService(users repo.UserRepository, jwt *helpers.JWTManager, media MediaStore, mail Notifier, ledger TokenLedger, links Links, logger logrus.FieldLogger) *UserService {
	return &UserService{
		Repo:   users,
		JWT:    jwt,
		Media:  media,
		Mail:   mail,
		Ledger: ledger,
		Links:  links,
		Logger: logger,
	}
}

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Avatar   string // base64 data URI
}

// Register uploads the avatar and mails an activation link whose token
// carries the whole pending account. Nothing is persisted until activation.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (string, error) {
	email := normalizeEmail(in.Email)
	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperror.ErrUserExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	avatar, err := uploadImage(ctx, s.Media, AvatarFolder, in.Avatar, "avatar")
	if err != nil {
		return "", err
	}

	pending := entity.PendingUser{Name: in.Name, Email: email, PasswordHash: hash, Avatar: avatar}
	token, _, err := helpers.SignPayload(s.JWT.ActivationSecret, pending, s.JWT.ActivationTTL)
	if err != nil {
		return "", errors.Wrap(err, "sign activation token")
	}

	job := mailer.EmailJob{
		To:       email,
		Template: mailtpl.ActivateUser,
		Data: mailtpl.NewActivationData(s.Links.Branding, mailtpl.ActivateUser, in.Name, email,
			s.Links.UserActivationURL+"/"+token, s.JWT.ActivationTTL),
	}
	if err := s.Mail.Notify(ctx, job); err != nil {
		discardImage(ctx, s.Media, s.Logger, avatar.PublicID, logrus.Fields{"email": email})
		return "", apperror.Upstream(err, "Failed to send activation email")
	}
	return email, nil
}

// Activate persists the pending account from token and logs it in.
func (s *UserService) Activate(ctx context.Context, token string) (*entity.User, Session, error) {
	claims, err := helpers.ParsePayload[entity.PendingUser](s.JWT.ActivationSecret, token)
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
		return nil, Session{}, apperror.ErrUserExists
	}

	u := &entity.User{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.PasswordHash,
		Avatar:   p.Avatar,
		Role:     entity.RoleUser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, Session{}, apperror.ErrUserExists
		}
		return nil, Session{}, err
	}
	u.Password = ""

	sess, err := issueSession(s.JWT, u.ID, entity.KindUser, u.Role)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, Session, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email), true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, Session{}, apperror.ErrUserNotFound
		}
		return nil, Session{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, Session{}, apperror.ErrInvalidCredentials
	}
	u.Password = ""

	sess, err := issueSession(s.JWT, u.ID, entity.KindUser, u.Role)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateUserInfoInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string // current password, required to confirm the change
}

// UpdateInfo overwrites name, email and phone number. Concurrent updates are
// last-writer-wins.
func (s *UserService) UpdateInfo(ctx context.Context, id primitive.ObjectID, in UpdateUserInfoInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	email := normalizeEmail(in.Email)
	if email != "" && email != u.Email {
		exists, err := s.Repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.ErrUserExists
		}
		u.Email = email
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	u.PhoneNumber = in.PhoneNumber

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.ErrUserExists
		}
		return nil, err
	}
	u.Password = ""
	return u, nil
}

// UpdateAvatar uploads the new avatar, stores the reference and only then
// removes the old object, so the account always points at a live image.
func (s *UserService) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*entity.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	img, err := uploadImage(ctx, s.Media, AvatarFolder, avatar, "avatar")
	if err != nil {
		return nil, err
	}

	old := u.Avatar
	u.Avatar = img
	if err := s.Repo.Update(ctx, u); err != nil {
		discardImage(ctx, s.Media, s.Logger, img.PublicID, logrus.Fields{"user_id": id.Hex()})
		return nil, err
	}
	if !old.IsZero() {
		discardImage(ctx, s.Media, s.Logger, old.PublicID, logrus.Fields{"user_id": id.Hex()})
	}
	return u, nil
}

type AddressInput struct {
	ID          string
	Country     string
	City        string
	Address1    string
	Address2    string
	ZipCode     string
	AddressType string
}

// UpdateAddress edits the address with the given id, or adds a new one.
// Only one address per type is allowed.
func (s *UserService) UpdateAddress(ctx context.Context, userID primitive.ObjectID, in AddressInput) (*entity.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	addr := entity.Address{
		Country:     in.Country,
		City:        in.City,
		Address1:    in.Address1,
		Address2:    in.Address2,
		ZipCode:     in.ZipCode,
		AddressType: in.AddressType,
	}

	idx := -1
	if in.ID != "" {
		if aid, err := primitive.ObjectIDFromHex(in.ID); err == nil {
			for i := range u.Addresses {
				if u.Addresses[i].ID == aid {
					idx = i
					break
				}
			}
		}
	}
	if same := u.AddressByType(in.AddressType); same >= 0 && same != idx {
		return nil, apperror.Validation(fmt.Sprintf("%s address already exists", in.AddressType))
	}

	if idx >= 0 {
		addr.ID = u.Addresses[idx].ID
		u.Addresses[idx] = addr
	} else {
		addr.ID = primitive.NewObjectID()
		u.Addresses = append(u.Addresses, addr)
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*entity.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := u.Addresses[:0]
	found := false
	for _, a := range u.Addresses {
		if a.ID == addressID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return nil, apperror.ErrAddressNotFound
	}
	u.Addresses = kept

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword, confirm string) error {
	u, err := s.Repo.GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperror.ErrInvalidCredentials.WithMessage("Old password is incorrect!")
	}
	if err := checkNewPassword(newPassword, confirm); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return s.Repo.UpdatePassword(ctx, id, hash)
}

// ForgotPassword mails a reset link when the email belongs to a user. Neither
// an unknown email nor a failed send is reported to the caller, so the
// outcome is the same whether or not the account exists.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("email", email).Debug("password reset requested for unknown user")
			}
			return nil
		}
		return err
	}

	token, _, err := helpers.SignPayload(s.JWT.ResetSecret, resetPayload{ID: u.ID.Hex(), Kind: entity.KindUser}, s.JWT.ResetTTL)
	if err != nil {
		return errors.Wrap(err, "sign reset token")
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ResetPassword,
		Data:     mailtpl.NewResetPasswordData(s.Links.Branding, u.Name, u.Email, s.Links.ResetPasswordURL+"/"+token, s.JWT.ResetTTL),
	}
	if err := s.Mail.Notify(ctx, job); err != nil {
		helpers.LogError(s.Logger, "reset mail failed", err, logrus.Fields{"email": email, "kind": entity.KindUser})
	}
	return nil
}

// ResetPassword sets a new password from a reset token. Each token works once.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	id, claims, err := parseResetToken(s.JWT, token, entity.KindUser)
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
			return apperror.ErrUserNotFound
		}
		return err
	}
	return nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.Repo.List(ctx)
}

// Delete removes the user and then its avatar. The avatar removal is
// attempted with the stored public id and only logged on failure.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	discardImage(ctx, s.Media, s.Logger, u.Avatar.PublicID, logrus.Fields{"user_id": id.Hex()})
	return nil
}
