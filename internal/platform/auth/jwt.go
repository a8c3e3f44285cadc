package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"hash402/internal/platform/config"
)

// ErrInvalidToken is the only failure ValidateToken reports. Expired,
// malformed, and badly signed tokens are deliberately collapsed into
// one outcome so callers cannot be used as a verification oracle.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID         string `json:"uid"`
	OrganizationID string `json:"oid"`
	WalletAddress  string `json:"wallet,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) GenerateSessionToken(userID, orgID, walletAddress string) (string, error) {
	claims := Claims{
		UserID:         userID,
		OrganizationID: orgID,
		WalletAddress:  walletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "hash402",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
