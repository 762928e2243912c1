package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// Context keys set by the guards below.
const (
	CtxUserKey   = "user"
	CtxSellerKey = "seller"
)

var errLoginAsSeller = apperror.ErrForbidden.WithMessage("Please login as a seller to continue")

// Auth builds the route guards. Checks run in order: token validity, then
// account existence, then role.
type Auth struct {
	JWT   *helpers.JWTManager
	Users repo.UserRepository
	Shops repo.ShopRepository
}

func NewAuth(jwt *helpers.JWTManager, users repo.UserRepository, shops repo.ShopRepository) *Auth {
	return &Auth{JWT: jwt, Users: users, Shops: shops}
}

// bearerOrCookie takes the session token from the named cookie, falling back
// to an Authorization: Bearer header.
func bearerOrCookie(c *gin.Context, cookie string) string {
	if v, err := c.Cookie(cookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (a *Auth) parse(c *gin.Context, cookie string) (*helpers.SessionClaims, primitive.ObjectID, bool) {
	claims, err := a.JWT.ParseSessionToken(bearerOrCookie(c, cookie))
	if err != nil {
		response.Fail(c, apperror.ErrUnauthenticated)
		return nil, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		response.Fail(c, apperror.ErrUnauthenticated)
		return nil, primitive.NilObjectID, false
	}
	return claims, id, true
}

func (a *Auth) loadUser(c *gin.Context, id primitive.ObjectID) (*entity.User, bool) {
	u, err := a.Users.GetByID(c.Request.Context(), id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Fail(c, apperror.ErrUnauthenticated)
		} else {
			response.Fail(c, err)
		}
		return nil, false
	}
	return u, true
}

func (a *Auth) loadShop(c *gin.Context, id primitive.ObjectID) (*entity.Shop, bool) {
	s, err := a.Shops.GetByID(c.Request.Context(), id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Fail(c, apperror.ErrUnauthenticated)
		} else {
			response.Fail(c, err)
		}
		return nil, false
	}
	return s, true
}

// RequireUser admits requests carrying a user session and stores the user
// under CtxUserKey.
func (a *Auth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := a.parse(c, helpers.UserCookie)
		if !ok {
			return
		}
		switch claims.Kind {
		case entity.KindUser:
			u, ok := a.loadUser(c, id)
			if !ok {
				return
			}
			c.Set(CtxUserKey, u)
			c.Next()
		case entity.KindShop:
			if _, ok := a.loadShop(c, id); !ok {
				return
			}
			response.Fail(c, apperror.ErrForbidden)
		default:
			response.Fail(c, apperror.ErrUnauthenticated)
		}
	}
}

// RequireSeller admits requests carrying a shop session and stores the shop
// under CtxSellerKey. A valid user session is rejected as forbidden.
func (a *Auth) RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := a.parse(c, helpers.SellerCookie)
		if !ok {
			return
		}
		switch claims.Kind {
		case entity.KindShop:
			s, ok := a.loadShop(c, id)
			if !ok {
				return
			}
			c.Set(CtxSellerKey, s)
			c.Next()
		case entity.KindUser:
			if _, ok := a.loadUser(c, id); !ok {
				return
			}
			response.Fail(c, errLoginAsSeller)
		default:
			response.Fail(c, apperror.ErrUnauthenticated)
		}
	}
}

// RequireRole must run after RequireUser.
func (a *Auth) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			response.Fail(c, apperror.ErrUnauthenticated)
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		response.Fail(c, apperror.ErrForbidden.WithMessage(fmt.Sprintf("%s can not access this resources!", u.Role)))
	}
}

// CurrentUser returns the user stored by RequireUser, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// CurrentSeller returns the shop stored by RequireSeller, or nil.
func CurrentSeller(c *gin.Context) *entity.Shop {
	if v, ok := c.Get(CtxSellerKey); ok {
		if s, ok := v.(*entity.Shop); ok {
			return s
		}
	}
	return nil
}
