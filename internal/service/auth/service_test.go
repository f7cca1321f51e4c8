package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniclinic/clinic-api/internal/model"
	pkgauth "github.com/omniclinic/clinic-api/pkg/auth"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/security"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*model.User{}, byEmail: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	stored := *u
	f.byID[u.ID] = &stored
	f.byEmail[u.Email] = &stored
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func newAuthService(repo *fakeUserRepo) *Service {
	// MinCost keeps the bcrypt work factor cheap for tests.
	return NewService(repo, security.NewBcryptHasher(4), pkgauth.NewJWTService("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "dr.ayen@example.com",
		FullName: "Dr. Ayen",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, user.Status)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password is never stored in clear")

	token, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.ayen@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Greater(t, token.ExpiresIn, int64(0))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "dup@example.com", FullName: "A", Password: "password-one",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &model.RegisterRequest{
		Email: "dup@example.com", FullName: "B", Password: "password-two",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestLoginFailures(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "nurse@example.com", FullName: "Nurse", Password: "right-password",
	})
	require.NoError(t, err)

	// Wrong password and unknown email both come back as unauthorized,
	// indistinguishable to the caller.
	for _, req := range []*model.LoginRequest{
		{Email: "nurse@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "right-password"},
	} {
		_, err := svc.Login(context.Background(), req)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
	}

	// A disabled account stops logging in.
	stored := repo.byEmail[user.Email]
	stored.Status = model.UserStatusDisabled
	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email: "nurse@example.com", Password: "right-password",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}
