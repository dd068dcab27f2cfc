package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/geo"
)

type fakeRepo struct {
	byEmail map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*User{}}
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	u, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.LastLoginAt = &t
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), auth.NewBcryptPasswordHasherWithCost(4))

	t.Run("Success", func(t *testing.T) {
		u, err := svc.Register(ctx, RegisterRequest{
			Email:     "  Pro@Example.com ",
			Password:  "password123",
			FullName:  " Pat Provider ",
			Role:      RoleProvider,
			Latitude:  ptr(40.7),
			Longitude: ptr(-74.0),
		})
		require.NoError(t, err)
		assert.Equal(t, "pro@example.com", u.Email)
		assert.Equal(t, "Pat Provider", u.FullName)
		assert.True(t, u.IsProvider())
		assert.NotEqual(t, "password123", u.PasswordHash)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "pro@example.com", Password: "password123", Role: RoleCustomer})
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: " ", Password: "password123", Role: RoleCustomer})
		assert.ErrorIs(t, err, ErrEmailRequired)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short", Role: RoleCustomer})
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "password123", Role: "admin"})
		assert.ErrorIs(t, err, ErrInvalidRole)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "password123", Role: RoleCustomer, Latitude: ptr(1.0)})
		assert.ErrorIs(t, err, ErrIncompleteCoords)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "password123", Role: RoleCustomer, Latitude: ptr(95.0), Longitude: ptr(0.0)})
		assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, auth.NewBcryptPasswordHasherWithCost(4))

	_, err := svc.Register(ctx, RegisterRequest{Email: "c@example.com", Password: "password123", FullName: "C", Role: RoleCustomer})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		u, err := svc.Login(ctx, "C@example.com", "password123")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := svc.Login(ctx, "c@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, err := svc.Login(ctx, "x@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		repo.byEmail["c@example.com"].IsActive = false
		defer func() { repo.byEmail["c@example.com"].IsActive = true }()

		_, err := svc.Login(ctx, "c@example.com", "password123")
		assert.True(t, errors.Is(err, ErrInactiveUser))
	})
}
