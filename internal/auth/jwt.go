package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/FoodStore/pkg/middleware"
)

const issuer = "foodapi"

// Claims are the JWT claims of a session token.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 session tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a manager. A zero expiry issues tokens that never
// expire.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Generate signs a token for userID.
func (m *JWTManager) Generate(userID string) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	if m.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiry))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// TokenValidator adapts Validate for the auth middleware.
func (m *JWTManager) TokenValidator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		c, err := m.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: c.UserID}, nil
	}
}
