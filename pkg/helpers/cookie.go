package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Session cookie names
const (
	UserCookie   = "token"
	SellerCookie = "seller_token"
)

// CtxSecureKey is set by the scheme middleware when the request reached us over HTTPS.
const CtxSecureKey = "secure_request"

type Manager struct {
	Domain   string
	SameSite http.SameSite
}

func NewCookie(domain, sameSite string) *Manager {
	return &Manager{Domain: domain, SameSite: ParseSameSite(sameSite)}
}

// ParseSameSite maps strict/lax/none to the http constant. Unknown values fall back to Lax.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// IsSecure reports whether the current request was served over HTTPS.
func IsSecure(c *gin.Context) bool {
	return c.GetBool(CtxSecureKey)
}

// sameSiteFor downgrades None to Lax on plain HTTP; browsers drop
// SameSite=None cookies that are not Secure.
func (m *Manager) sameSiteFor(secure bool) http.SameSite {
	if m.SameSite == http.SameSiteNoneMode && !secure {
		return http.SameSiteLaxMode
	}
	return m.SameSite
}

// SetSession stores a session token in the named httpOnly cookie until exp.
func (m *Manager) SetSession(c *gin.Context, name, token string, exp time.Time) {
	secure := IsSecure(c)
	c.SetSameSite(m.sameSiteFor(secure))
	c.SetCookie(name, token, maxAgeFrom(exp), "/", m.Domain, secure, true)
}

// Clear expires the named cookie.
func (m *Manager) Clear(c *gin.Context, name string) {
	secure := IsSecure(c)
	c.SetSameSite(m.sameSiteFor(secure))
	c.SetCookie(name, "", -1, "/", m.Domain, secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
