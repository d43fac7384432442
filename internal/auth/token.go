package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims hanya membawa subject, kind, iat, exp dan jti. Role dan email
// sengaja tidak disimpan; user selalu dimuat ulang saat verifikasi.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenManager menandatangani dan memeriksa token HS256.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: now}
}

func (m *TokenManager) ttl(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return m.refreshTTL
	}
	return m.accessTTL
}

func (m *TokenManager) Issue(userID int, kind TokenKind) (string, error) {
	now := m.now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(kind))),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse memeriksa signature lalu expiry terhadap clock milik manager.
// Kind tidak diperiksa di sini.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, ErrTokenInvalid
	}
	// valid hanya selama now < exp
	if !m.now().Before(claims.ExpiresAt.Time) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}
