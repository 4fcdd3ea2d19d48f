package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// Session выданный токен и его владелец
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users     UserStore
	jwt       *auth.JWTManager
	blacklist auth.Blacklist
}

func NewAuthService(users UserStore, jwt *auth.JWTManager, blacklist auth.Blacklist) *AuthService {
	return &AuthService{users: users, jwt: jwt, blacklist: blacklist}
}

// Register создает пользователя и сразу выдает токен
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: find user: %v", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		PasswordHash: string(hash),
		LastSeenAt:   time.Now(),
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		// гонка двух регистраций или занятый username
		return nil, ErrUserExists
	}

	return s.issue(user)
}

// Login выдаёт JWT и обновляет last_seen
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: find user: %v", ErrPersistence, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastSeen(ctx, user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: update last seen: %v", ErrPersistence, err)
	}

	return s.issue(user)
}

// Logout ставит токен в черный список до его истечения
func (s *AuthService) Logout(ctx context.Context, token string) error {
	exp, err := s.jwt.Expiry(token)
	if err != nil {
		return err
	}
	return s.blacklist.Add(ctx, token, time.Until(exp))
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
