// Package auth issues and verifies the signed identity tokens that gate the
// event API.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 2 * time.Hour

var (
	ErrMissingToken = errors.New("access token missing")
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidUser is returned by Issue for a user that has no id or role.
	ErrInvalidUser = errors.New("cannot issue token: user needs a positive id and a known role")
)

// Claims is the JWT payload. Only the signature is trusted; the user store is
// never consulted during verification.
type Claims struct {
	UserID int64      `json:"id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates HS256 tokens with a process-wide secret.
type JWTManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTManager returns a manager for secret. The secret must come from
// configuration; an empty one is rejected.
func NewJWTManager(secret, issuer string) (*JWTManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source. Tests use it to exercise expiry.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// Issue returns a signed token for user that expires TokenTTL from now.
func (m *JWTManager) Issue(user model.User) (string, error) {
	if user.ID <= 0 || !user.Role.Valid() {
		return "", ErrInvalidUser
	}

	now := m.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks the signature and expiry of tokenString and returns the
// identity it carries.
func (m *JWTManager) Verify(tokenString string) (model.IdentityClaim, error) {
	if strings.TrimSpace(tokenString) == "" {
		return model.IdentityClaim{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return model.IdentityClaim{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID <= 0 || !claims.Role.Valid() {
		return model.IdentityClaim{}, ErrInvalidToken
	}

	identity := model.IdentityClaim{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// TokenFromHeader extracts the token from an "Authorization: Bearer <token>" value.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
