package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/univista/sis-api/internal/models"
	"github.com/univista/sis-api/pkg/config"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type memUsers struct {
	byEmail map[string]*models.User
	deleted []string
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	for email, user := range m.byEmail {
		if user.ID == id {
			delete(m.byEmail, email)
		}
	}
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *memUsers) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *memUsers) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *memUsers) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type memUniversities struct {
	university *models.University
	department *models.Department
}

func (m *memUniversities) FindByName(_ context.Context, name string) (*models.University, error) {
	if m.university == nil || !strings.EqualFold(m.university.Name, name) {
		return nil, sql.ErrNoRows
	}
	return m.university, nil
}

func (m *memUniversities) FindDepartmentByName(_ context.Context, name string) (*models.Department, error) {
	if m.department == nil || !strings.EqualFold(m.department.Name, name) {
		return nil, sql.ErrNoRows
	}
	return m.department, nil
}

type memStudents struct {
	created []models.Student
	taken   bool
}

func (m *memStudents) Create(_ context.Context, student *models.Student) error {
	m.created = append(m.created, *student)
	return nil
}

func (m *memStudents) FindByUserID(_ context.Context, userID string) (*models.Student, error) {
	for i := range m.created {
		if m.created[i].UserID == userID {
			return &m.created[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStudents) EnrollmentNoTaken(context.Context, string) (bool, error) {
	return m.taken, nil
}

type memFaculties struct {
	created []models.Faculty
	taken   bool
}

func (m *memFaculties) Create(_ context.Context, faculty *models.Faculty) error {
	m.created = append(m.created, *faculty)
	return nil
}

func (m *memFaculties) FindByUserID(_ context.Context, userID string) (*models.Faculty, error) {
	for i := range m.created {
		if m.created[i].UserID == userID {
			return &m.created[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memFaculties) EmployeeNoTaken(context.Context, string) (bool, error) {
	return m.taken, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "sis-api",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func testUniversity() *models.University {
	return &models.University{
		ID:            "uni-1",
		Name:          "Univista",
		StudentSuffix: "@stu.univista.edu",
		FacultySuffix: "@fac.univista.edu",
	}
}

func authFixture(users *memUsers, students *memStudents, faculties *memFaculties) *AuthService {
	return NewAuthService(
		users,
		&memUniversities{university: testUniversity(), department: &models.Department{ID: "dep-1", Name: "Computer Science", Code: "CS"}},
		students,
		faculties,
		testJWTConfig(),
		nil,
		zap.NewNop(),
	)
}

func TestAuthServiceRegisterDerivesStudentRole(t *testing.T) {
	users := newMemUsers()
	students := &memStudents{}
	svc := authFixture(users, students, &memFaculties{})

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:       "Asha Rao",
		Email:          "Asha@stu.univista.edu",
		Password:       "secret123",
		UniversityName: "Univista",
		Department:     "Computer Science",
		IdentityNo:     "EN-2025-001",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, res.Role)
	require.Len(t, students.created, 1)
	assert.Equal(t, "EN-2025-001", students.created[0].EnrollmentNo)

	stored, err := users.FindByEmail(context.Background(), "asha@stu.univista.edu")
	require.NoError(t, err)
	assert.Equal(t, "uni-1", stored.UniversityID)
	require.NotNil(t, stored.DepartmentID)
	assert.Equal(t, "dep-1", *stored.DepartmentID)
}

func TestAuthServiceRegisterDerivesFacultyRole(t *testing.T) {
	faculties := &memFaculties{}
	svc := authFixture(newMemUsers(), &memStudents{}, faculties)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:       "Prof. Iyer",
		Email:          "iyer@fac.univista.edu",
		Password:       "secret123",
		UniversityName: "Univista",
		IdentityNo:     "EMP-042",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleFaculty, res.Role)
	require.Len(t, faculties.created, 1)
	assert.Equal(t, "EMP-042", faculties.created[0].EmployeeNo)
}

func TestAuthServiceRegisterRejectsUnknownDomain(t *testing.T) {
	svc := authFixture(newMemUsers(), &memStudents{}, &memFaculties{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:       "Stranger",
		Email:          "stranger@gmail.com",
		Password:       "secret123",
		UniversityName: "Univista",
		IdentityNo:     "X-1",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestAuthServiceRegisterRollsBackOnDuplicateIdentity(t *testing.T) {
	users := newMemUsers()
	svc := authFixture(users, &memStudents{taken: true}, &memFaculties{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:       "Asha Rao",
		Email:          "asha@stu.univista.edu",
		Password:       "secret123",
		UniversityName: "Univista",
		IdentityNo:     "EN-2025-001",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
	// The identity row is deleted when the specialization write fails.
	require.Len(t, users.deleted, 1)
	_, err = users.FindByEmail(context.Background(), "asha@stu.univista.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func seedUser(t *testing.T, users *memUsers, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		FullName:     "Asha Rao",
		Email:        "asha@stu.univista.edu",
		PasswordHash: string(hash),
		Role:         role,
		UniversityID: "uni-1",
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	users := newMemUsers()
	students := &memStudents{created: []models.Student{{ID: "stu-1", UserID: "user-1", EnrollmentNo: "EN-001"}}}
	svc := authFixture(users, students, &memFaculties{})
	seedUser(t, users, models.RoleStudent)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@stu.univista.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	require.NotNil(t, res.User.Student)
	assert.Equal(t, "EN-001", res.User.Student.EnrollmentNo)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	users := newMemUsers()
	svc := authFixture(users, &memStudents{}, &memFaculties{})
	seedUser(t, users, models.RoleStudent)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@stu.univista.edu",
		Password: "wrong",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	users := newMemUsers()
	svc := authFixture(users, &memStudents{}, &memFaculties{})
	seedUser(t, users, models.RoleStudent)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@stu.univista.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token was revoked, so a replay fails.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceLogoutRevokesAllSessions(t *testing.T) {
	users := newMemUsers()
	svc := authFixture(users, &memStudents{}, &memFaculties{})
	seedUser(t, users, models.RoleStudent)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@stu.univista.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "user-1"))

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}
