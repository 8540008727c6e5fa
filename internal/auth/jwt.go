package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only privileged role: it gates every mutating
// simulation endpoint.
const RoleAdmin = "admin"

type Claims struct {
	Operator string `json:"operator"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func getJWTSecret() (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is required but not set")
	}
	if len(secret) < 32 {
		return "", fmt.Errorf("JWT_SECRET must be at least 32 characters long for security")
	}
	return secret, nil
}

// GenerateToken issues an HS256 operator token.
func GenerateToken(operator, role string, expiration time.Duration) (string, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return "", fmt.Errorf("cannot generate token: %w", err)
	}

	claims := Claims{
		Operator: operator,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("operator_%s", operator),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies an operator token.
func ValidateToken(tokenString string) (*Claims, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return nil, fmt.Errorf("cannot validate token: %w", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
