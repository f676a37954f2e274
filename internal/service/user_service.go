package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

// DefaultProfilePicURL is served for users who never uploaded a picture.
const DefaultProfilePicURL = "https://static.univista.edu/avatars/default.png"

type userProfileStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateFullName(ctx context.Context, id, fullName string) error
	UpdatePhone(ctx context.Context, id, phone string) error
	UpdateDOB(ctx context.Context, id string, dob time.Time) error
	UpdateProfilePic(ctx context.Context, id, url string) error
}

// UserService serves profile reads and partial updates.
type UserService struct {
	users     userProfileStore
	students  studentResolver
	faculties facultyResolver
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userProfileStore, students studentResolver, faculties facultyResolver, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, students: students, faculties: faculties, validate: validate, logger: logger}
}

// Me returns the acting user's profile with its specialization record.
func (s *UserService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	info := &models.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
		ProfilePic: user.ProfilePic,
	}
	if info.ProfilePic == nil {
		pic := DefaultProfilePicURL
		info.ProfilePic = &pic
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
	return info, nil
}

// UpdateProfile applies the non-nil fields of a partial update, then
// returns the refreshed profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*models.UserInfo, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if req.FullName == nil && req.Phone == nil && req.DOB == nil && req.ProfilePicURL == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.FullName != nil {
		if err := s.users.UpdateFullName(ctx, userID, *req.FullName); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update full name")
		}
	}
	if req.Phone != nil {
		if err := s.users.UpdatePhone(ctx, userID, *req.Phone); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update phone")
		}
	}
	if req.DOB != nil {
		dob, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dob must be YYYY-MM-DD")
		}
		if err := s.users.UpdateDOB(ctx, userID, dob); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update date of birth")
		}
	}
	if req.ProfilePicURL != nil {
		// An empty URL resets the picture to the default avatar.
		pic := *req.ProfilePicURL
		if pic == "" {
			pic = DefaultProfilePicURL
		}
		if err := s.users.UpdateProfilePic(ctx, userID, pic); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile picture")
		}
	}

	return s.Me(ctx, userID)
}
