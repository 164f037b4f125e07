package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Claims is the decoded content of an access token.
type Claims struct {
	UserID primitive.ObjectID
	Role   string
	Email  string
}

func IssueAccessToken(secret string, u models.User, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"userId": u.ID.Hex(),
		"role":   u.Role,
		"email":  u.Email,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken accepts only HS256 tokens that carry an expiry.
func ParseAccessToken(secret, raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("token is not valid")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("token claims invalid")
	}
	hexID, _ := mc["userId"].(string)
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return Claims{}, fmt.Errorf("userId claim: %w", err)
	}
	role, _ := mc["role"].(string)
	email, _ := mc["email"].(string)
	return Claims{UserID: id, Role: role, Email: email}, nil
}

// HashToken is how refresh tokens are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func GenerateRefreshString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
