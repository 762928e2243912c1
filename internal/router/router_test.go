package router

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/mocks"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

var (
	setupOnce sync.Once
	testImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
)

type apiResponse struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	engine   *gin.Engine
	users    *mocks.UserRepository
	shops    *mocks.ShopRepository
	products *mocks.ProductRepository
	media    *mocks.MediaStore
	mail     *mocks.Notifier
	jwt      *helpers.JWTManager
	ping     error
	logs     *test.Hook
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		helpers.PasswordCost = bcrypt.MinCost
		validation.Init()
	})

	s := &testServer{
		users:    mocks.NewUserRepository(),
		shops:    mocks.NewShopRepository(),
		products: mocks.NewProductRepository(),
		media:    mocks.NewMediaStore(),
		mail:     mocks.NewNotifier(),
		jwt:      helpers.NewJWTManager("session", "activation", "reset", time.Hour, 5*time.Minute, 15*time.Minute),
	}
	logger, hook := test.NewNullLogger()
	s.logs = hook
	cfg := &config.Config{
		AppName:            "marketplace-test",
		CookieSameSite:     "none",
		CORSAllowedOrigins: "http://localhost:3000",
		UserActivationURL:  "http://localhost:3000/activation",
		ShopActivationURL:  "http://localhost:3000/seller/activation",
		ResetPasswordURL:   "http://localhost:3000/reset-password",
	}
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(s.jwt)
	container.SetMedia(s.media)
	container.SetNotifier(s.mail)
	container.SetLedger(mocks.NewTokenLedger())

	d := BuildDeps(s.users, s.shops, s.products)
	d.Health = func(context.Context) error { return s.ping }

	s.engine = NewEngine(cfg, logger)
	reg := NewRegistry(s.engine)
	Mount(reg, d)
	require.NoError(t, reg.RegisterAll())
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func cookieNamed(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

// signUpUser walks create-user and activation and returns the session cookie.
func (s *testServer) signUpUser(t *testing.T, name, email string) (*http.Cookie, string) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/user/create-user", gin.H{
		"name": name, "email": email, "password": "secret1", "avatar": testImage,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := s.do(t, http.MethodPost, "/user/activation", gin.H{"activation_token": s.mail.LastToken()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		User entity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return cookieNamed(t, w, helpers.UserCookie), data.User.ID.Hex()
}

func (s *testServer) signUpShop(t *testing.T, email string) (*http.Cookie, string) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/shop/create-shop", gin.H{
		"name": "Corner", "email": email, "password": "secret1", "avatar": testImage,
		"address": "Main St 1", "phoneNumber": "0800", "zipCode": "12345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := s.do(t, http.MethodPost, "/shop/activation", gin.H{"activation_token": s.mail.LastToken()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		User entity.Shop `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return cookieNamed(t, w, helpers.SellerCookie), data.User.ID.Hex()
}

func (s *testServer) seedAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	hash, err := helpers.HashPassword("adminpw")
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), &entity.User{
		Name: "Admin", Email: "admin@example.com", Password: hash, Role: entity.RoleAdmin,
	}))
	w, _ := s.do(t, http.MethodPost, "/user/login-user", gin.H{"email": "admin@example.com", "password": "adminpw"})
	require.Equal(t, http.StatusCreated, w.Code)
	return cookieNamed(t, w, helpers.UserCookie)
}

func productBody(images int) gin.H {
	imgs := make([]string, images)
	for i := range imgs {
		imgs[i] = testImage
	}
	return gin.H{
		"name": "Rattan Basket", "description": "hand woven", "category": "Crafts",
		"discountPrice": 12.5, "stock": 4, "images": imgs, "beneficiary": entity.BeneficiaryWomen,
	}
}

func TestUserSignupActivateLogin(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/user/create-user", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": "secret1", "avatar": testImage,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "please check your email:- jane@example.com to activate your account!", resp.Message)

	w, _ = s.do(t, http.MethodPost, "/user/activation", gin.H{"activation_token": s.mail.LastToken()})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = s.do(t, http.MethodPost, "/user/login-user", gin.H{"email": "jane@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	ck := cookieNamed(t, w, helpers.UserCookie)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure, "plain http test request")
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	var data struct {
		User  entity.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	claims, err := s.jwt.ParseSessionToken(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, data.User.ID.Hex(), claims.Subject)
	assert.Equal(t, ck.Value, data.Token)
	assert.NotContains(t, string(resp.Data), "password")

	w, resp = s.do(t, http.MethodPost, "/user/login-user", gin.H{"email": "jane@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide the correct information", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/user/getuser", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), "jane@example.com")
}

func TestUserSignupValidation(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/user/create-user", gin.H{"email": "not-an-email", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide all the fields", resp.Message)
	assert.Equal(t, "is required", resp.Error.Details["name"])
	assert.Equal(t, "must be a valid email", resp.Error.Details["email"])

	s.signUpUser(t, "Jane", "jane@example.com")
	w, resp = s.do(t, http.MethodPost, "/user/create-user", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": "secret1", "avatar": testImage,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", resp.Message)
}

func TestActivationTokenSingleUse(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/user/create-user", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": "secret1", "avatar": testImage,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token := s.mail.LastToken()

	w, _ = s.do(t, http.MethodPost, "/user/activation", gin.H{"activation_token": token})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/user/activation", gin.H{"activation_token": token})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := s.do(t, http.MethodPost, "/user/activation", gin.H{"activation_token": token + "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(t, http.MethodGet, "/user/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Log out successful!", resp.Message)
	assert.Equal(t, -1, cookieNamed(t, w, helpers.UserCookie).MaxAge)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	userCk, userID := s.signUpUser(t, "Jane", "jane@example.com")

	w, _ := s.do(t, http.MethodGet, "/user/admin-all-users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := s.do(t, http.MethodGet, "/user/admin-all-users", nil, userCk)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "user can not access this resources!", resp.Message)

	adminCk := s.seedAdmin(t)
	w, resp = s.do(t, http.MethodGet, "/user/admin-all-users", nil, adminCk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, resp.Meta["count"])

	w, _ = s.do(t, http.MethodDelete, "/user/delete-user/not-an-id", nil, adminCk)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/user/delete-user/"+userID, nil, adminCk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.media.DeletedIDs(), 1, "avatar removed with the user")

	// the deleted user's session no longer authenticates
	w, _ = s.do(t, http.MethodGet, "/user/getuser", nil, userCk)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserInfoMalformedID(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(t, http.MethodGet, "/user/user-info/xyz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User doesn't exist", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/shop/get-shop-info/xyz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Shop doesn't exist", resp.Message)
}

func TestSellerAndProductFlow(t *testing.T) {
	s := newTestServer(t)
	sellerCk, shopID := s.signUpShop(t, "shop@example.com")
	userCk, _ := s.signUpUser(t, "Jane", "jane@example.com")

	w, _ := s.do(t, http.MethodPost, "/shop/login-shop", gin.H{"email": "shop@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := s.do(t, http.MethodPost, "/product/create-product", productBody(5), userCk)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "user cookie is not read by the seller guard")

	userSeller := &http.Cookie{Name: helpers.SellerCookie, Value: userCk.Value}
	w, resp = s.do(t, http.MethodPost, "/product/create-product", productBody(5), userSeller)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Please login as a seller to continue", resp.Message)

	w, resp = s.do(t, http.MethodPost, "/product/create-product", productBody(4), sellerCk)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A product requires exactly 5 images", resp.Message)

	w, resp = s.do(t, http.MethodPost, "/product/create-product", productBody(5), sellerCk)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product entity.Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, shopID, product.Shop.ID.Hex())
	assert.Len(t, product.Images, 5)

	w, resp = s.do(t, http.MethodGet, "/product/get-all-products-shop/"+shopID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Meta["count"])

	w, resp = s.do(t, http.MethodPut, "/product/create-new-review", gin.H{
		"productId": product.ID.Hex(), "rating": 4, "comment": "nice",
	}, userCk)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Reviewed successfully!", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/product/search?q=rattan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Meta["count"])

	otherCk, _ := s.signUpShop(t, "other@example.com")
	w, resp = s.do(t, http.MethodDelete, "/product/delete-shop-product/"+product.ID.Hex(), nil, otherCk)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can only delete your own products", resp.Message)

	w, _ = s.do(t, http.MethodDelete, "/product/delete-shop-product/"+product.ID.Hex(), nil, sellerCk)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, http.MethodGet, "/product/get-all-products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp.Meta["count"])
}

func TestSellerProfile(t *testing.T) {
	s := newTestServer(t)
	sellerCk, _ := s.signUpShop(t, "shop@example.com")

	w, resp := s.do(t, http.MethodPut, "/shop/update-payment-methods", gin.H{
		"withdrawMethod": gin.H{"bankName": "BCA", "bankAccountNumber": "123"},
	}, sellerCk)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(resp.Data), "BCA")

	w, resp = s.do(t, http.MethodDelete, "/shop/delete-withdraw-method", nil, sellerCk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"withdrawMethod":null`)

	w, _ = s.do(t, http.MethodGet, "/shop/getSeller", nil, sellerCk)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestForgotPasswordIsUniform(t *testing.T) {
	s := newTestServer(t)
	s.signUpUser(t, "Jane", "jane@example.com")
	sent := len(s.mail.Jobs)

	known, kr := s.do(t, http.MethodPost, "/user/forgot-password", gin.H{"email": "jane@example.com"})
	unknown, ur := s.do(t, http.MethodPost, "/user/forgot-password", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, kr.Message, ur.Message)
	assert.Len(t, s.mail.Jobs, sent+1)

	token := s.mail.LastToken()
	body := gin.H{"token": token, "newPassword": "fresh1", "confirmPassword": "fresh1"}
	w, _ := s.do(t, http.MethodPost, "/user/reset-password", body)
	require.Equal(t, http.StatusOK, w.Code)
	w, resp := s.do(t, http.MethodPost, "/user/reset-password", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)

	w, _ = s.do(t, http.MethodPost, "/user/login-user", gin.H{"email": "jane@example.com", "password": "fresh1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestForgotPasswordIsUniformWhileMailIsDown(t *testing.T) {
	s := newTestServer(t)
	s.signUpUser(t, "Jane", "jane@example.com")
	s.mail.Err = errors.New("mailgun 503")

	known, kr := s.do(t, http.MethodPost, "/user/forgot-password", gin.H{"email": "jane@example.com"})
	unknown, ur := s.do(t, http.MethodPost, "/user/forgot-password", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, kr.Message, ur.Message)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	s.ping = errors.New("no primary")
	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	entry := s.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, w.Header().Get("X-Request-ID"), entry.Data["request_id"])
	assert.Equal(t, http.StatusServiceUnavailable, entry.Data["status"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "no primary")
}
