package auth

import (
	"errors"
	"time"

	"zibana-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the operator identity minted by the platform's
// access-control layer. This service never authenticates operators itself;
// it validates the token only to attribute transitions to an actor.
type Claims struct {
	AdminID string `json:"admin_id"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	cfg *config.Config
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{cfg: cfg}
}

// GenerateToken mints an actor token. Used by internal tooling and tests;
// production tokens come from the access-control layer.
func (j *JWTManager) GenerateToken(adminID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.cfg.JWT.Secret))
}

// ValidateToken verifies a token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(j.cfg.JWT.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.AdminID == "" {
		return nil, errors.New("token has no admin identity")
	}

	return claims, nil
}
