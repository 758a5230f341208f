package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/auth"
	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type eventRecorder struct {
	mu     sync.Mutex
	actors []auditapp.Actor
	acts   []audit.Action
}

func (r *eventRecorder) Log(_ context.Context, actor auditapp.Actor, action audit.Action, _ string, _ *int64, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors = append(r.actors, actor)
	r.acts = append(r.acts, action)
}

type failingBlacklist struct{}

func (failingBlacklist) AddToBlacklist(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	blacklist auth.TokenBlacklist
	recorder  *eventRecorder
}

func newAuthFixture(blacklist auth.TokenBlacklist) *authFixture {
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "homeswift",
		Audience:               "homeswift-users",
	})
	f := &authFixture{users: new(MockUserRepository), blacklist: blacklist, recorder: &eventRecorder{}}
	f.svc = NewAuthService(f.users, jwtSvc, blacklist, f.recorder, zap.NewNop())
	return f
}

// storedUser is hashed once; bcrypt at cost 12 is slow
var storedUser = func() *identity.User {
	u := &identity.User{ID: 7, Email: "sipho@example.com", Name: "Sipho", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	if err := u.SetPassword("correct-horse"); err != nil {
		panic(err)
	}
	return u
}()

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("missing credentials", func(t *testing.T) {
		f := newAuthFixture(nil)
		_, err := f.svc.Login(ctx, LoginInput{Email: "  ", Password: "x"})
		assert.ErrorIs(t, err, ErrCredentialsRequired)
		_, err = f.svc.Login(ctx, LoginInput{Email: "a@b.c"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)
		f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)

		_, err1 := f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "correct-horse"})
		_, err2 := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "wrong"})
		require.Error(t, err1)
		require.Error(t, err2)
		assert.Equal(t, err1.Error(), err2.Error())
		assert.ErrorIs(t, err1, shared.ErrUnauthorized)
		assert.Empty(t, f.recorder.acts)
	})

	t.Run("success defaults role and audits", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)

		res, err := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "correct-horse", IP: "10.0.0.9"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, identity.RoleCustomer, res.User.Role)
		assert.Equal(t, []audit.Action{audit.ActionLogin}, f.recorder.acts)
		assert.Equal(t, "10.0.0.9", f.recorder.actors[0].IP)

		claims, err := f.svc.Authenticate(ctx, res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "customer", claims.Role)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, "x@example.com").Return(nil, errors.New("db gone"))
		_, err := f.svc.Login(ctx, LoginInput{Email: "x@example.com", Password: "pw"})
		assert.ErrorContains(t, err, "db gone")
	})
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(nil)
	f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)
	f.users.On("FindByID", ctx, int64(7)).Return(storedUser, nil)

	login, err := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken, "1.2.3.4")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Contains(t, f.recorder.acts, audit.ActionTokenRefreshed)

	_, err = f.svc.Refresh(ctx, login.RefreshToken, "1.2.3.4")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestAuthService_RefreshErrors(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(nil)

	_, err := f.svc.Refresh(ctx, "", "")
	assert.ErrorIs(t, err, ErrRefreshMissing)

	_, err = f.svc.Refresh(ctx, "not-a-token", "")
	assert.Equal(t, ErrRefreshInvalid, err)

	f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)
	login, err := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "correct-horse"})
	require.NoError(t, err)

	// An access token cannot be used to refresh
	_, err = f.svc.Refresh(ctx, login.AccessToken, "")
	assert.Equal(t, ErrRefreshInvalid, err)

	f.users.On("FindByID", ctx, int64(7)).Return(nil, nil)
	_, err = f.svc.Refresh(ctx, login.RefreshToken, "")
	assert.Equal(t, ErrUserNotFound, err)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes tokens and audits", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)
		login, err := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "correct-horse"})
		require.NoError(t, err)

		f.svc.Logout(ctx, login.AccessToken, login.RefreshToken, "10.1.1.1")

		_, err = f.svc.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
		_, err = f.svc.Refresh(ctx, login.RefreshToken, "")
		assert.Equal(t, ErrRefreshInvalid, err)
		assert.Equal(t, []audit.Action{audit.ActionLogin, audit.ActionLogout}, f.recorder.acts)
		require.NotNil(t, f.recorder.actors[1].UserID)
		assert.Equal(t, int64(7), *f.recorder.actors[1].UserID)
	})

	t.Run("invalid token is silent", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.svc.Logout(ctx, "garbage", "", "")
		f.svc.Logout(ctx, "", "", "")
		assert.Empty(t, f.recorder.acts)
	})
}

func TestAuthService_BlacklistOutageDoesNotLockOut(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(failingBlacklist{})
	f.users.On("FindByEmail", ctx, storedUser.Email).Return(storedUser, nil)
	login, err := f.svc.Login(ctx, LoginInput{Email: storedUser.Email, Password: "correct-horse"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, login.AccessToken)
	assert.NoError(t, err)
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input SignupInput
		want  error
	}{
		{"missing name", SignupInput{Email: "a@example.com", Password: "longenough"}, ErrMissingFields},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "longenough"}, shared.ErrInvalidInput},
		{"short password", SignupInput{Name: "A", Email: "a@example.com", Password: "short"}, shared.ErrInvalidInput},
		{"admin not allowed", SignupInput{Name: "A", Email: "a@example.com", Password: "longenough", Role: "admin"}, shared.ErrInvalidInput},
		{"provider needs service type", SignupInput{Name: "A", Email: "a@example.com", Password: "longenough", Role: "provider"}, ErrServiceTypeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(nil)
			_, err := f.svc.Signup(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
			f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, "sipho@example.com").Return(storedUser, nil)
		_, err := f.svc.Signup(ctx, SignupInput{Name: "S", Email: " Sipho@Example.com ", Password: "longenough"})
		assert.ErrorIs(t, err, ErrEmailRegistered)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("creates provider", func(t *testing.T) {
		f := newAuthFixture(nil)
		f.users.On("FindByEmail", ctx, "lebo@example.com").Return(nil, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Email == "lebo@example.com" && u.Role == identity.RoleProvider && u.VerifyPassword("longenough")
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*identity.User).ID = 12
		}).Return(nil)

		info, err := f.svc.Signup(ctx, SignupInput{
			Name: "Lebo", Email: "lebo@example.com", Password: "longenough", Role: "provider", ServiceType: "plumbing",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), info.ID)
		assert.Equal(t, identity.RoleProvider, info.Role)
	})
}
