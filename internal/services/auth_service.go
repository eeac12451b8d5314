package services

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// PrincipalClaim is the JWT claim carrying the customer id.
const PrincipalClaim = "user_id"

// AuthService verifies the HS256 tokens issued by the identity provider.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: []byte(jwtSecret)}
}

// ValidateToken parses and validates a JWT and returns the numeric principal.
func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return principalFromClaim(claims[PrincipalClaim])
}

func principalFromClaim(v interface{}) (uint, error) {
	switch id := v.(type) {
	case float64:
		if id >= 1 && id == float64(uint64(id)) {
			return uint(id), nil
		}
	case string:
		if n, err := strconv.ParseUint(id, 10, 64); err == nil && n > 0 {
			return uint(n), nil
		}
	}
	return 0, fmt.Errorf("invalid token: claim %s is not a customer id", PrincipalClaim)
}

// IssueToken signs a token for customerID. Tokens are normally issued by the
// identity provider; this is used by local tooling and tests.
func (s *AuthService) IssueToken(customerID uint, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		PrincipalClaim: customerID,
		"exp":          time.Now().Add(ttl).Unix(),
		"iat":          time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
