package application

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/samplemarket/internal/auth/domain"
	"golang.org/x/crypto/bcrypt"
)

type AuthApplicationService struct {
	repo      domain.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthApplicationService(repo domain.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthApplicationService {
	return &AuthApplicationService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type RegisterCommand struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

func (s *AuthApplicationService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	// 邮箱已注册直接拒绝
	if _, err := s.repo.GetByEmail(ctx, cmd.Email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(cmd.Email, string(hashed), cmd.DisplayName, domain.UserRole(cmd.Role))
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthApplicationService) Login(ctx context.Context, email, password string) (string, int64, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", 0, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", 0, domain.ErrInvalidCredentials
	}

	exp := time.Now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     exp.Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp.Unix(), nil
}

func (s *AuthApplicationService) GetProfile(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
