package application

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/samplemarket/internal/auth/domain"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	nextID uint
	users  map[string]*domain.User
}

func newMockUserRepository() *MockUserRepository {
	return &MockUserRepository{nextID: 1, users: map[string]*domain.User{}}
}

func (m *MockUserRepository) Save(_ context.Context, user *domain.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id uint) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

const testSecret = "test-secret"

func newAuthService(repo *MockUserRepository) *AuthApplicationService {
	return NewAuthApplicationService(repo, testSecret, time.Hour)
}

func TestRegister(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterCommand{
		Email:       "producer@example.com",
		Password:    "correct-horse",
		DisplayName: "Beat Maker",
		Role:        "PRODUCER",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleProducer, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password must be stored hashed")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "other-pass"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_UnknownRoleDefaultsToBuyer(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "correct-horse", Role: "ADMIN"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, user.Role)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)
	user, err := svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "correct-horse", Role: "PRODUCER"})
	require.NoError(t, err)

	signed, exp, err := svc.Login(context.Background(), "a@example.com", "correct-horse")

	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, "a@example.com", claims["email"])
	assert.Equal(t, "PRODUCER", claims["role"])
}

func TestLogin_BadPassword(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)
	_, err := svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@example.com", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "missing@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "unknown email and bad password are indistinguishable")
}

func TestGetProfile(t *testing.T) {
	repo := newMockUserRepository()
	svc := newAuthService(repo)
	user, err := svc.Register(context.Background(), RegisterCommand{Email: "a@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	got, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetProfile(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
