package application

import (
	"encoding/base64"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-marketplace/internal/mocks"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

func init() { helpers.PasswordCost = bcrypt.MinCost }

var testImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

func testLinks() Links {
	return Links{
		UserActivationURL: "https://shop.test/activation",
		ShopActivationURL: "https://shop.test/seller/activation",
		ResetPasswordURL:  "https://shop.test/reset-password",
		Branding:          mailtpl.Branding{CompanyName: "Shop"},
	}
}

func testJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("s", "a", "r", time.Hour, 5*time.Minute, 15*time.Minute)
}

func testLogger() (logrus.FieldLogger, *test.Hook) {
	l, hook := test.NewNullLogger()
	return l, hook
}

type userFixture struct {
	svc    *UserService
	repo   *mocks.UserRepository
	media  *mocks.MediaStore
	mail   *mocks.Notifier
	logger *test.Hook
}

func newUserFixture() userFixture {
	logger, hook := testLogger()
	f := userFixture{
		repo:   mocks.NewUserRepository(),
		media:  mocks.NewMediaStore(),
		mail:   mocks.NewNotifier(),
		logger: hook,
	}
	f.svc = NewUserService(f.repo, testJWT(), f.media, f.mail, mocks.NewTokenLedger(), testLinks(), logger)
	return f
}

type shopFixture struct {
	svc    *ShopService
	repo   *mocks.ShopRepository
	media  *mocks.MediaStore
	mail   *mocks.Notifier
	logger *test.Hook
}

func newShopFixture() shopFixture {
	logger, hook := testLogger()
	f := shopFixture{
		repo:   mocks.NewShopRepository(),
		media:  mocks.NewMediaStore(),
		mail:   mocks.NewNotifier(),
		logger: hook,
	}
	f.svc = NewShopService(f.repo, testJWT(), f.media, f.mail, mocks.NewTokenLedger(), testLinks(), logger)
	return f
}
