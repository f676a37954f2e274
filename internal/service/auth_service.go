package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/univista/sis-api/internal/models"
	"github.com/univista/sis-api/pkg/config"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

type universityStore interface {
	FindByName(ctx context.Context, name string) (*models.University, error)
	FindDepartmentByName(ctx context.Context, name string) (*models.Department, error)
}

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	EnrollmentNoTaken(ctx context.Context, enrollmentNo string) (bool, error)
}

type facultyStore interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	FindByUserID(ctx context.Context, userID string) (*models.Faculty, error)
	EmployeeNoTaken(ctx context.Context, employeeNo string) (bool, error)
}

// AuthService handles registration, login, token refresh and logout.
// Registration derives the role from the email suffix registered on the
// university record; the faculty suffix is checked first so overlapping
// suffixes resolve in favor of faculty.
type AuthService struct {
	users        userStore
	universities universityStore
	students     studentStore
	faculties    facultyStore
	jwtConfig    config.JWTConfig
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users userStore,
	universities universityStore,
	students studentStore,
	faculties facultyStore,
	jwtConfig config.JWTConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:        users,
		universities: universities,
		students:     students,
		faculties:    faculties,
		jwtConfig:    jwtConfig,
		validate:     validate,
		logger:       logger,
	}
}

// Register creates the identity row plus its role-specialization row. The
// two writes are not transactional across repositories, so a failed
// specialization write deletes the identity row before returning.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	university, err := s.universities.FindByName(ctx, req.UniversityName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	role, err := deriveRole(email, university)
	if err != nil {
		return nil, err
	}

	var departmentID *string
	if req.Department != "" {
		department, err := s.universities.FindDepartmentByName(ctx, req.Department)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		departmentID = &department.ID
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		UniversityID: university.ID,
		DepartmentID: departmentID,
	}
	if req.ProfilePicURL != "" {
		user.ProfilePic = &req.ProfilePicURL
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dob must be YYYY-MM-DD")
		}
		user.DOB = &dob
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	if err := s.createSpecialization(ctx, user, req.IdentityNo); err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back user after specialization failure",
				zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, err
	}

	return &models.RegisterResponse{UserID: user.ID, Role: role}, nil
}

func (s *AuthService) createSpecialization(ctx context.Context, user *models.User, identityNo string) error {
	switch user.Role {
	case models.RoleStudent:
		taken, err := s.students.EnrollmentNoTaken(ctx, identityNo)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment number")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "enrollment number already registered")
		}
		student := &models.Student{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			EnrollmentNo:    identityNo,
			BatchYear:       time.Now().UTC().Year(),
			CurrentSemester: 1,
		}
		if err := s.students.Create(ctx, student); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
		}
	case models.RoleFaculty:
		taken, err := s.faculties.EmployeeNoTaken(ctx, identityNo)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee number")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "employee number already registered")
		}
		faculty := &models.Faculty{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			EmployeeNo: identityNo,
		}
		if err := s.faculties.Create(ctx, faculty); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty record")
		}
	}
	return nil
}

func deriveRole(email string, university *models.University) (models.UserRole, error) {
	if university.FacultySuffix != "" && strings.HasSuffix(email, strings.ToLower(university.FacultySuffix)) {
		return models.RoleFaculty, nil
	}
	if university.StudentSuffix != "" && strings.HasSuffix(email, strings.ToLower(university.StudentSuffix)) {
		return models.RoleStudent, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "email domain is not registered for this university")
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, issuedAt, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	info := models.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
		ProfilePic: user.ProfilePic,
	}
	switch user.Role {
	case models.RoleStudent:
		if student, err := s.students.FindByUserID(ctx, user.ID); err == nil {
			info.Student = student
		}
	case models.RoleFaculty:
		if faculty, err := s.faculties.FindByUserID(ctx, user.ID); err == nil {
			info.Faculty = faculty
		}
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtConfig.Expiration.Seconds()),
		User:         info,
		IssuedAt:     issuedAt,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued, so a replayed token fails.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	stored, err := s.users.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid refresh token")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load refresh token")
	}
	if stored.Revoked || time.Now().UTC().After(stored.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.users.RevokeRefreshToken(ctx, stored.ID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate refresh token")
	}

	accessToken, refreshToken, issuedAt, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtConfig.Expiration.Seconds()),
		IssuedAt:     issuedAt,
	}, nil
}

// Logout revokes every outstanding refresh token for the user. Access
// tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.RevokeUserRefreshTokens(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh tokens")
	}
	return nil
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithIssuer(s.jwtConfig.Issuer))
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (string, string, time.Time, error) {
	now := time.Now().UTC()

	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.Expiration)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return "", "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate refresh token")
	}
	if err := s.users.CreateRefreshToken(ctx, &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(s.jwtConfig.RefreshExpiration),
	}); err != nil {
		return "", "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return accessToken, refreshToken, now, nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
