package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/pkg/auth"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	user.ID = uuid.New()

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthorized(nil)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Unauthorized(nil)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, err
	}
	return user, nil
}
