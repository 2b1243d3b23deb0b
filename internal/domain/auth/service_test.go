package auth_test

import (
	"context"
	"errors"
	"testing"

	"Fluxo/internal/domain/auth"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	byEmail map[string]*user.User
}

func (m *memoryUsers) Create(ctx context.Context, u *user.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memoryUsers) Update(ctx context.Context, u *user.User) error { return m.Create(ctx, u) }

func (m *memoryUsers) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (m *memoryUsers) ListIDs(ctx context.Context) ([]ulid.ULID, error) { return nil, nil }

type fakeSeeder struct {
	seeded []ulid.ULID
	err    error
}

func (f *fakeSeeder) SeedDefaults(ctx context.Context, userID ulid.ULID) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, userID)
	return nil
}

func newAuthService(seeder *fakeSeeder) (*auth.Service, *memoryUsers) {
	repo := &memoryUsers{byEmail: map[string]*user.User{}}
	users := user.NewService(repo)
	users.Cost = bcrypt.MinCost
	return auth.NewService(users, seeder, shared.NoopTransactor{}), repo
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	seeder := &fakeSeeder{}
	svc, repo := newAuthService(seeder)
	ctx := context.Background()

	u := &user.User{Name: "Ana", Email: " Ana@Example.com ", Password: "Segura@123"}
	require.NoError(t, svc.Register(ctx, u))

	stored := repo.byEmail["ana@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Segura@123", stored.Password)
	assert.Equal(t, shared.Personal, stored.DefaultContext)
	assert.Equal(t, []ulid.ULID{stored.Id}, seeder.seeded)

	logged, err := svc.Login(ctx, auth.Login{Email: "ANA@example.com", Password: "Segura@123"})
	require.NoError(t, err)
	assert.Equal(t, stored.Id, logged.Id)

	_, err = svc.Login(ctx, auth.Login{Email: "ana@example.com", Password: "errada"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.Login{Email: "ninguem@example.com", Password: "Segura@123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateAndWeakPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(&fakeSeeder{})
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, &user.User{Name: "Ana", Email: "ana@example.com", Password: "Segura@123"}))

	err := svc.Register(ctx, &user.User{Name: "Outra", Email: "ana@example.com", Password: "Segura@123"})
	assert.ErrorIs(t, err, appErrors.ErrEmailAlreadyExists)

	err = svc.Register(ctx, &user.User{Name: "Bia", Email: "bia@example.com", Password: "fraca"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestRegisterPropagatesSeedFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(&fakeSeeder{err: errors.New("insert failed")})
	err := svc.Register(context.Background(), &user.User{Name: "Ana", Email: "ana@example.com", Password: "Segura@123"})
	require.Error(t, err)
}
