// Package auth issues access and refresh tokens for user accounts.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/store"
)

type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// AdminKey unlocks admin registration. Empty disables it.
	AdminKey string
}

type Service struct {
	users  store.Users
	tokens store.RefreshTokens
	opts   Options
	now    func() time.Time
}

func NewService(users store.Users, tokens store.RefreshTokens, opts Options) *Service {
	return &Service{users: users, tokens: tokens, opts: opts, now: time.Now}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	AdminKey string `json:"adminKey"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by Register, Login and Refresh.
type Session struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := catalog.ValidateStruct(in); err != nil {
		return Session{}, err
	}

	role := models.RoleUser
	if key := strings.TrimSpace(in.AdminKey); key != "" {
		if s.opts.AdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.AdminKey)) != 1 {
			log.Println("[AUTH] [ERROR] register rejected admin key for", in.Email)
			return Session{}, fmt.Errorf("invalid admin key: %w", apperr.ErrForbidden)
		}
		role = models.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, &u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return Session{}, fmt.Errorf("email already registered: %w", apperr.ErrConflict)
		}
		return Session{}, err
	}

	log.Printf("[AUTH] [INFO] registered %s as %s", u.Email, u.Role)
	return s.issue(ctx, u, nil)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return Session{}, apperr.Invalid("email", "email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		log.Println("[AUTH] [ERROR] login invalid credentials for", email)
		return Session{}, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	log.Println("[AUTH] [INFO] login succeeded:", email)
	return s.issue(ctx, u, nil)
}

// Refresh rotates a refresh token. The presented token is revoked and points
// at its replacement; a token that was already used is rejected.
func (s *Service) Refresh(ctx context.Context, plain string) (Session, error) {
	t, err := s.usableToken(ctx, plain)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.Get(ctx, t.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, fmt.Errorf("user not found: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u, &t)
}

func (s *Service) Logout(ctx context.Context, plain string) error {
	t, err := s.usableToken(ctx, plain)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, t.ID, nil); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
		}
		return err
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	return s.users.Get(ctx, userID)
}

// Authenticate resolves a bearer token to the stored user.
func (s *Service) Authenticate(ctx context.Context, raw string) (models.User, error) {
	claims, err := ParseAccessToken(s.opts.Secret, raw)
	if err != nil {
		return models.User{}, fmt.Errorf("%v: %w", err, apperr.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, fmt.Errorf("user not found: %w", apperr.ErrUnauthorized)
	}
	return u, err
}

func (s *Service) usableToken(ctx context.Context, plain string) (models.RefreshToken, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return models.RefreshToken{}, apperr.Invalid("refreshToken", "refreshToken is required")
	}
	t, err := s.tokens.GetByHash(ctx, HashToken(plain))
	if errors.Is(err, apperr.ErrNotFound) {
		return models.RefreshToken{}, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return models.RefreshToken{}, err
	}
	if !t.Usable(s.now()) {
		return models.RefreshToken{}, fmt.Errorf("refresh token expired or revoked: %w", apperr.ErrUnauthorized)
	}
	return t, nil
}

func (s *Service) issue(ctx context.Context, u models.User, previous *models.RefreshToken) (Session, error) {
	now := s.now().UTC()
	access, err := IssueAccessToken(s.opts.Secret, u, s.opts.AccessTTL, now)
	if err != nil {
		return Session{}, fmt.Errorf("sign access token: %w", err)
	}
	plain, err := GenerateRefreshString()
	if err != nil {
		return Session{}, fmt.Errorf("generate refresh token: %w", err)
	}

	refresh := models.RefreshToken{
		UserID:    u.ID,
		TokenHash: HashToken(plain),
		ExpiresAt: now.Add(s.opts.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Insert(ctx, &refresh); err != nil {
		return Session{}, err
	}
	if previous != nil {
		if err := s.tokens.Revoke(ctx, previous.ID, &refresh.ID); err != nil {
			// Lost a race with another refresh of the same token.
			_ = s.tokens.Revoke(ctx, refresh.ID, nil)
			if errors.Is(err, apperr.ErrConflict) {
				return Session{}, fmt.Errorf("refresh token already used: %w", apperr.ErrUnauthorized)
			}
			return Session{}, err
		}
	}

	return Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: plain,
		ExpiresIn:    int64(s.opts.AccessTTL.Seconds()),
	}, nil
}
