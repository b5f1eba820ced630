package auth

import (
	"fmt"
	"time"
	"watch-party/errors"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "watch-party"

// Claims defines the viewer identity stored inside the JWT.
// Tokens are issued elsewhere, this service only verifies them.
type Claims struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	UserName string `json:"user_name" validate:"required,max=64"`
	PhotoKey string `json:"photo_key" validate:"max=256"`
	jwt.RegisteredClaims
}

type Tokenizer struct {
	secret []byte
}

func NewTokenizer(secret string) *Tokenizer {
	return &Tokenizer{secret: []byte(secret)}
}

// GenerateToken creates a signed JWT for a viewer.
// Used by tests and the e2e suite.
func (t *Tokenizer) GenerateToken(userID, userName, photoKey string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		UserName: userName,
		PhotoKey: photoKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses and validates the signature, expiration and content of
// a JWT string.
func (t *Tokenizer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	if err := Validate(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	return claims, nil
}
