package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByPhone      *models.User
	emailExists      bool
	created          *models.User
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if m.userByPhone == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByPhone, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailExists, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	m.created = user
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

type mockStudentWriter struct {
	created *models.Student
}

func (m *mockStudentWriter) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.created = student
	return nil
}

func newAuthServiceForTest(repo *mockAuthRepo, students *mockStudentWriter) *AuthService {
	return NewAuthService(repo, students, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "sims-api",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true, Role: models.RoleAdmin}}
	svc := newAuthServiceForTest(repo, &mockStudentWriter{})

	res, err := svc.Login(context.Background(), models.LoginRequest{EmailOrPhone: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginByPhone(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByPhone: &models.User{ID: "u1", Phone: "555-0100", PasswordHash: string(password), Active: true, Role: models.RoleTeacher}}
	svc := newAuthServiceForTest(repo, &mockStudentWriter{})

	res, err := svc.Login(context.Background(), models.LoginRequest{EmailOrPhone: "555-0100", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{}, &mockStudentWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{EmailOrPhone: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true}}
	svc := newAuthServiceForTest(repo, &mockStudentWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{EmailOrPhone: "user@example.com", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: false}}
	svc := newAuthServiceForTest(repo, &mockStudentWriter{})

	_, err := svc.Login(context.Background(), models.LoginRequest{EmailOrPhone: "user@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRegisterStudentCreatesProfile(t *testing.T) {
	repo := &mockAuthRepo{}
	students := &mockStudentWriter{}
	svc := newAuthServiceForTest(repo, students)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "new@example.com",
		Password:  "password",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, students.created)
	assert.Contains(t, students.created.StudentCode, "STU-")
	require.NotNil(t, students.created.UserID)
	assert.Equal(t, user.ID, *students.created.UserID)
	assert.Equal(t, models.StudentStatusActive, students.created.Status)
}

func TestAuthServiceRegisterAdminSkipsProfile(t *testing.T) {
	repo := &mockAuthRepo{}
	students := &mockStudentWriter{}
	svc := newAuthServiceForTest(repo, students)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "admin@example.com",
		Password:  "password",
		FirstName: "Grace",
		LastName:  "Hopper",
		Role:      models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Nil(t, students.created)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{emailExists: true}
	svc := newAuthServiceForTest(repo, &mockStudentWriter{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "dup@example.com",
		Password:  "password",
		FirstName: "Dup",
		LastName:  "User",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestValidateToken(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{}, &mockStudentWriter{})
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RoleAdmin}
	token, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{}, &mockStudentWriter{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
