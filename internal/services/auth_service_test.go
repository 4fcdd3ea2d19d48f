package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/mocks"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/internal/services"
	"github.com/thereayou/groupchat/pkg/auth"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*services.AuthService, *mocks.MockUserStore, *auth.JWTManager, auth.Blacklist) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	jwt := auth.NewJWTManager("secret", time.Hour)
	blacklist := auth.NewMemoryBlacklist()
	return services.NewAuthService(users, jwt, blacklist), users, jwt, blacklist
}

func TestAuthService_Register(t *testing.T) {
	// Given
	req := require.New(t)
	svc, users, jwt, _ := newAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	users.EXPECT().FindUserByEmail(ctx, "alice@example.com").Return(nil, database.ErrNotFound)
	users.EXPECT().SaveUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
		req.NotEqual("password123", u.PasswordHash)
		u.ID = userID
		return nil
	})

	// When
	session, err := svc.Register(ctx, services.RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "password123"})

	// Then
	req.NoError(err)
	got, err := jwt.UserID(session.Token)
	req.NoError(err)
	req.Equal(userID, got)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	// Given
	svc, users, _, _ := newAuthService(t)
	ctx := context.Background()
	users.EXPECT().FindUserByEmail(ctx, "alice@example.com").Return(&models.User{}, nil)

	// When
	_, err := svc.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})

	// Then
	require.ErrorIs(t, err, services.ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "bob@example.com", PasswordHash: string(hash)}

	t.Run("valid credentials", func(t *testing.T) {
		// Given
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().FindUserByEmail(gomock.Any(), "bob@example.com").Return(user, nil)
		users.EXPECT().UpdateLastSeen(gomock.Any(), user.ID).Return(nil)

		// When
		session, err := svc.Login(context.Background(), services.LoginInput{Email: "bob@example.com", Password: "password123"})

		// Then
		require.NoError(t, err)
		require.Equal(t, user.ID, session.User.ID)
		require.NotEmpty(t, session.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		// Given
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().FindUserByEmail(gomock.Any(), "bob@example.com").Return(user, nil)

		// When
		_, err := svc.Login(context.Background(), services.LoginInput{Email: "bob@example.com", Password: "nope"})

		// Then
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		// Given
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().FindUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, database.ErrNotFound)

		// When
		_, err := svc.Login(context.Background(), services.LoginInput{Email: "ghost@example.com", Password: "x"})

		// Then
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout_BlacklistsToken(t *testing.T) {
	// Given
	svc, _, jwt, blacklist := newAuthService(t)
	token, _, err := jwt.Generate(uuid.New())
	require.NoError(t, err)

	// When
	require.NoError(t, svc.Logout(context.Background(), token))

	// Then
	revoked, err := blacklist.Contains(context.Background(), token)
	require.NoError(t, err)
	require.True(t, revoked)
}
