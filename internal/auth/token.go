package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature, structure or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: sub is the user id as a decimal string.
type Claims struct {
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HS256 access tokens with a single shared secret.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, expiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue signs a token for subjectID that expires after the configured TTL.
func (s *TokenCodec) Issue(subjectID int, role string, permissions []string) (string, error) {
	now := s.now()
	if permissions == nil {
		permissions = []string{}
	}

	claims := Claims{
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(subjectID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf(msgTokenSignFailed, err)
	}
	return signed, nil
}

// Validate verifies signature and expiry. Every failure wraps ErrInvalidToken.
func (s *TokenCodec) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: "+msgTokenParseFailed, ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, msgInvalidTokenClaims)
	}

	return claims, nil
}

func (s *TokenCodec) TTL() time.Duration {
	return s.expiry
}
