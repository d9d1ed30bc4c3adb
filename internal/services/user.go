package services

import (
	"errors"
	"fmt"
	"time"

	"campus-portal-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultRole = "user"
	jwtExpDays  = 30
)

var ErrInvalidToken = errors.New("invalid token")

// AuthService validates the bearer tokens issued by the portal's account service
type AuthService struct {
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: jwtSecret}
}

// GenerateJWT signs a token for actor
func (s *AuthService) GenerateJWT(actor models.Actor) (string, error) {
	role := actor.Role
	if role == "" {
		role = defaultRole
	}
	claims := jwt.MapClaims{
		"user_id": actor.ID,
		"role":    role,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the actor it names
func (s *AuthService) ValidateJWT(tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return models.Actor{}, fmt.Errorf("%w: user_id not found in token", ErrInvalidToken)
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = defaultRole
	}

	return models.Actor{ID: userID, Role: role}, nil
}
