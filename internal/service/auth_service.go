package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/apperr"
	"taskflow/internal/domain"
)

// UserStore is the persistence boundary for users.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthService signs users in by username, creating them on first use.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// SignIn returns the user for a username plus a fresh token, creating
// the user if it does not exist yet.
func (s *AuthService) SignIn(ctx context.Context, username string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", apperr.New(apperr.Validation, "username required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if apperr.IsKind(err, apperr.NotFound) {
		user = &domain.User{
			ID:        uuid.NewString(),
			Username:  username,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			// concurrent first sign-in hits the unique index; re-read
			if apperr.IsKind(err, apperr.Conflict) {
				user, err = s.users.GetByUsername(ctx, username)
				if err != nil {
					return nil, "", err
				}
			} else {
				return nil, "", err
			}
		}
	} else if err != nil {
		return nil, "", err
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "token generation failed", err)
	}
	return user, token, nil
}

// Me returns the current user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
