package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

func registerAndActivate(t *testing.T, f userFixture, email, password string) *entity.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterUserInput{Name: "Jane", Email: email, Password: password, Avatar: testImage})
	require.NoError(t, err)
	u, _, err := f.svc.Activate(ctx, f.mail.LastToken())
	require.NoError(t, err)
	return u
}

func TestUserRegisterMailsActivationLink(t *testing.T) {
	f := newUserFixture()
	email, err := f.svc.Register(context.Background(), RegisterUserInput{
		Name: "Jane", Email: "  Jane@Example.COM ", Password: "secret1", Avatar: testImage,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)

	assert.Equal(t, 0, f.repo.Len(), "nothing is stored before activation")
	require.Len(t, f.media.Uploaded, 1)
	assert.True(t, strings.HasPrefix(f.media.Uploaded[0].PublicID, AvatarFolder+"/"))

	job := f.mail.Last()
	assert.Equal(t, "jane@example.com", job.To)
	assert.Equal(t, mailtpl.ActivateUser, job.Template)
	assert.True(t, strings.HasPrefix(job.Data["ActionURL"].(string), "https://shop.test/activation/"))
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	f := newUserFixture()
	registerAndActivate(t, f, "jane@example.com", "secret1")

	_, err := f.svc.Register(context.Background(), RegisterUserInput{Name: "J", Email: "JANE@example.com", Password: "secret1", Avatar: testImage})
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
	assert.Len(t, f.media.Uploaded, 1, "no upload for a rejected registration")
}

func TestUserRegisterInvalidAvatar(t *testing.T) {
	f := newUserFixture()
	_, err := f.svc.Register(context.Background(), RegisterUserInput{Name: "J", Email: "j@x.io", Password: "secret1", Avatar: "not-an-image"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Empty(t, f.mail.Jobs)
}

func TestUserRegisterMailFailureRemovesAvatar(t *testing.T) {
	f := newUserFixture()
	f.mail.Err = errors.New("smtp down")
	_, err := f.svc.Register(context.Background(), RegisterUserInput{Name: "J", Email: "j@x.io", Password: "secret1", Avatar: testImage})
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	require.Len(t, f.media.Uploaded, 1)
	assert.Equal(t, []string{f.media.Uploaded[0].PublicID}, f.media.DeletedIDs())
}

func TestUserActivateOnce(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterUserInput{Name: "Jane", Email: "jane@example.com", Password: "secret1", Avatar: testImage})
	require.NoError(t, err)
	token := f.mail.LastToken()

	u, sess, err := f.svc.Activate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.Empty(t, u.Password)
	assert.Equal(t, f.media.Uploaded[0], u.Avatar)

	claims, err := f.svc.JWT.ParseSessionToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.Subject)
	assert.Equal(t, entity.KindUser, claims.Kind)

	_, _, err = f.svc.Activate(ctx, token)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
	assert.Equal(t, 1, f.repo.Len())
}

func TestUserActivateBadTokens(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	expired, _, err := helpers.SignPayload(f.svc.JWT.ActivationSecret, entity.PendingUser{Email: "a@b.c", PasswordHash: "h"}, -time.Second)
	require.NoError(t, err)
	_, _, err = f.svc.Activate(ctx, expired)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidToken))

	wrongSecret, _, err := helpers.SignPayload([]byte("other"), entity.PendingUser{Email: "a@b.c", PasswordHash: "h"}, time.Minute)
	require.NoError(t, err)
	_, _, err = f.svc.Activate(ctx, wrongSecret)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	empty, _, err := helpers.SignPayload(f.svc.JWT.ActivationSecret, entity.PendingUser{}, time.Minute)
	require.NoError(t, err)
	_, _, err = f.svc.Activate(ctx, empty)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestUserLogin(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	ctx := context.Background()

	got, sess, err := f.svc.Login(ctx, "JANE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.Password)
	assert.NotEmpty(t, sess.Token)

	_, _, err = f.svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestUserUpdateInfo(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	other := registerAndActivate(t, f, "john@example.com", "secret1")
	ctx := context.Background()

	_, err := f.svc.UpdateInfo(ctx, u.ID, UpdateUserInfoInput{Name: "Janet", Email: "jane@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = f.svc.UpdateInfo(ctx, u.ID, UpdateUserInfoInput{Name: "Janet", Email: other.Email, Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUserExists)

	got, err := f.svc.UpdateInfo(ctx, u.ID, UpdateUserInfoInput{Name: "Janet", Email: "janet@example.com", PhoneNumber: "555", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.Name)
	assert.Equal(t, "janet@example.com", got.Email)
	assert.Equal(t, "555", got.PhoneNumber)

	// the password survives an info update
	_, _, err = f.svc.Login(ctx, "janet@example.com", "secret1")
	assert.NoError(t, err)
}

func TestUserUpdateAvatarReplacesOld(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	old := u.Avatar

	got, err := f.svc.UpdateAvatar(context.Background(), u.ID, testImage)
	require.NoError(t, err)
	assert.NotEqual(t, old, got.Avatar)
	assert.Equal(t, []string{old.PublicID}, f.media.DeletedIDs())

	stored, err := f.svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Avatar, stored.Avatar)
}

func TestUserUpdateAvatarUploadFailureKeepsOld(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	f.media.UploadErr = errors.New("bucket gone")
	f.media.FailAfter = 0

	_, err := f.svc.UpdateAvatar(context.Background(), u.ID, testImage)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	assert.Empty(t, f.media.DeletedIDs())

	stored, _ := f.svc.Get(context.Background(), u.ID)
	assert.Equal(t, u.Avatar, stored.Avatar)
}

func TestUserAddresses(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	ctx := context.Background()

	home := AddressInput{Country: "ID", City: "Jakarta", Address1: "Jl. 1", ZipCode: "10110", AddressType: "Home"}
	got, err := f.svc.UpdateAddress(ctx, u.ID, home)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)
	homeID := got.Addresses[0].ID
	assert.False(t, homeID.IsZero())

	_, err = f.svc.UpdateAddress(ctx, u.ID, home)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "second Home address")

	// editing by id keeps the id and the type slot
	home.ID = homeID.Hex()
	home.City = "Bandung"
	got, err = f.svc.UpdateAddress(ctx, u.ID, home)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, homeID, got.Addresses[0].ID)
	assert.Equal(t, "Bandung", got.Addresses[0].City)

	office := AddressInput{Country: "ID", City: "Jakarta", Address1: "Jl. 2", ZipCode: "10120", AddressType: "Office"}
	got, err = f.svc.UpdateAddress(ctx, u.ID, office)
	require.NoError(t, err)
	assert.Len(t, got.Addresses, 2)

	got, err = f.svc.DeleteAddress(ctx, u.ID, homeID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "Office", got.Addresses[0].AddressType)

	_, err = f.svc.DeleteAddress(ctx, u.ID, homeID)
	assert.ErrorIs(t, err, apperror.ErrAddressNotFound)
}

func TestUserUpdatePassword(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	ctx := context.Background()

	err := f.svc.UpdatePassword(ctx, u.ID, "wrong", "secret2", "secret2")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidCredentials))
	assert.Equal(t, "Old password is incorrect!", err.(*apperror.Error).Message())

	err = f.svc.UpdatePassword(ctx, u.ID, "secret1", "secret2", "secret3")
	assert.ErrorIs(t, err, apperror.ErrPasswordMismatch)

	require.NoError(t, f.svc.UpdatePassword(ctx, u.ID, "secret1", "secret2", "secret2"))
	_, _, err = f.svc.Login(ctx, "jane@example.com", "secret2")
	assert.NoError(t, err)
}

func TestUserForgotAndResetPassword(t *testing.T) {
	f := newUserFixture()
	registerAndActivate(t, f, "jane@example.com", "secret1")
	ctx := context.Background()
	sent := len(f.mail.Jobs)

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Len(t, f.mail.Jobs, sent, "unknown email sends nothing")

	require.NoError(t, f.svc.ForgotPassword(ctx, "Jane@Example.com"))
	require.Len(t, f.mail.Jobs, sent+1)
	assert.Equal(t, mailtpl.ResetPassword, f.mail.Last().Template)
	token := f.mail.LastToken()

	err := f.svc.ResetPassword(ctx, token, "newpass", "other")
	assert.ErrorIs(t, err, apperror.ErrPasswordMismatch)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "newpass", "newpass"))
	_, _, err = f.svc.Login(ctx, "jane@example.com", "newpass")
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, token, "again1", "again1")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken, "reset links work once")
}

func TestUserForgotPasswordMailFailureLooksLikeSuccess(t *testing.T) {
	f := newUserFixture()
	registerAndActivate(t, f, "jane@example.com", "secret1")
	f.mail.Err = errors.New("mailgun 429")
	ctx := context.Background()

	assert.NoError(t, f.svc.ForgotPassword(ctx, "jane@example.com"))
	entry := f.logger.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "reset mail failed", entry.Message)
	assert.Equal(t, "jane@example.com", entry.Data["email"])

	assert.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
}

func TestUserResetRejectsShopToken(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")

	tok, _, err := helpers.SignPayload(f.svc.JWT.ResetSecret, resetPayload{ID: u.ID.Hex(), Kind: entity.KindShop}, time.Minute)
	require.NoError(t, err)
	err = f.svc.ResetPassword(context.Background(), tok, "newpass", "newpass")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestUserDeleteRemovesAvatar(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, u.ID))
	assert.Equal(t, []string{u.Avatar.PublicID}, f.media.DeletedIDs())

	_, err := f.svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, primitive.NewObjectID()), apperror.ErrUserNotFound)
}

func TestUserDeleteMediaFailureIsLogged(t *testing.T) {
	f := newUserFixture()
	u := registerAndActivate(t, f, "jane@example.com", "secret1")
	f.media.DeleteErr = errors.New("gcs 503")

	require.NoError(t, f.svc.Delete(context.Background(), u.ID))
	entry := f.logger.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "media delete failed", entry.Message)
	assert.Equal(t, u.Avatar.PublicID, entry.Data["public_id"])
}

func TestUserListNewestFirst(t *testing.T) {
	f := newUserFixture()
	first := registerAndActivate(t, f, "a@example.com", "secret1")
	second := registerAndActivate(t, f, "b@example.com", "secret1")

	users, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
	assert.Empty(t, users[0].Password)
}
