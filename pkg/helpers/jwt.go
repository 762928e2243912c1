package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTManager signs and verifies the three token families: sessions,
// activation links and password reset links. Each family has its own secret
// so a token of one kind never verifies as another.
type JWTManager struct {
	SessionSecret    []byte
	ActivationSecret []byte
	ResetSecret      []byte
	SessionTTL       time.Duration
	ActivationTTL    time.Duration
	ResetTTL         time.Duration
}

func NewJWTManager(sessionSecret, activationSecret, resetSecret string, sessionTTL, activationTTL, resetTTL time.Duration) *JWTManager {
	return &JWTManager{
		SessionSecret:    []byte(sessionSecret),
		ActivationSecret: []byte(activationSecret),
		ResetSecret:      []byte(resetSecret),
		SessionTTL:       sessionTTL,
		ActivationTTL:    activationTTL,
		ResetTTL:         resetTTL,
	}
}

// SessionClaims identifies an authenticated account. Subject holds the
// account id and Kind tells user sessions from shop sessions.
type SessionClaims struct {
	Kind string `json:"kind"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateSessionToken(subject, kind, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.SessionTTL)
	claims := &SessionClaims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.SessionSecret)
	return s, exp, err
}

func (m *JWTManager) ParseSessionToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parseInto(tokenStr, m.SessionSecret, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// PayloadClaims carries an arbitrary payload, e.g. a pending registration.
// The registered ID is a random jti usable for single-use bookkeeping.
type PayloadClaims[T any] struct {
	Payload T `json:"payload"`
	jwt.RegisteredClaims
}

// SignPayload signs payload with secret and the given lifetime.
func SignPayload[T any](secret []byte, payload T, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &PayloadClaims[T]{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return s, exp, err
}

// ParsePayload verifies tokenStr against secret and decodes its payload.
func ParsePayload[T any](secret []byte, tokenStr string) (*PayloadClaims[T], error) {
	claims := &PayloadClaims[T]{}
	if err := parseInto(tokenStr, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseInto(tokenStr string, secret []byte, claims jwt.Claims) error {
	if tokenStr == "" {
		return ErrTokenInvalid
	}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tkn.Valid {
		return ErrTokenInvalid
	}
	return nil
}
