package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type memProfileStore struct {
	user     *models.User
	fullName *string
	phone    *string
	dob      *time.Time
	pic      *string
}

func (m *memProfileStore) FindByID(context.Context, string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *memProfileStore) UpdateFullName(_ context.Context, _, fullName string) error {
	m.fullName = &fullName
	m.user.FullName = fullName
	return nil
}

func (m *memProfileStore) UpdatePhone(_ context.Context, _, phone string) error {
	m.phone = &phone
	return nil
}

func (m *memProfileStore) UpdateDOB(_ context.Context, _ string, dob time.Time) error {
	m.dob = &dob
	return nil
}

func (m *memProfileStore) UpdateProfilePic(_ context.Context, _, url string) error {
	m.pic = &url
	return nil
}

func TestUserServiceMeDefaultsProfilePic(t *testing.T) {
	store := &memProfileStore{user: &models.User{ID: "user-1", FullName: "Asha Rao", Role: models.RoleStudent}}
	svc := NewUserService(store, &fakeStudents{err: sql.ErrNoRows}, &fakeFaculties{}, nil, zap.NewNop())

	info, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, info.ProfilePic)
	assert.Equal(t, DefaultProfilePicURL, *info.ProfilePic)
}

func TestUserServiceUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	store := &memProfileStore{user: &models.User{ID: "user-1", FullName: "Asha Rao", Role: models.RoleStudent}}
	svc := NewUserService(store, &fakeStudents{err: sql.ErrNoRows}, &fakeFaculties{}, nil, zap.NewNop())

	name := "Asha R. Rao"
	info, err := svc.UpdateProfile(context.Background(), "user-1", dto.UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Asha R. Rao", info.FullName)
	require.NotNil(t, store.fullName)
	assert.Nil(t, store.phone)
	assert.Nil(t, store.dob)
	assert.Nil(t, store.pic)
}

func TestUserServiceUpdateProfileEmptyPicResetsToDefault(t *testing.T) {
	store := &memProfileStore{user: &models.User{ID: "user-1", FullName: "Asha Rao", Role: models.RoleStudent}}
	svc := NewUserService(store, &fakeStudents{err: sql.ErrNoRows}, &fakeFaculties{}, nil, zap.NewNop())

	empty := ""
	_, err := svc.UpdateProfile(context.Background(), "user-1", dto.UpdateProfileRequest{ProfilePicURL: &empty})
	require.NoError(t, err)

	require.NotNil(t, store.pic)
	assert.Equal(t, DefaultProfilePicURL, *store.pic)
}

func TestUserServiceUpdateProfileRejectsEmptyPatch(t *testing.T) {
	store := &memProfileStore{user: &models.User{ID: "user-1"}}
	svc := NewUserService(store, &fakeStudents{err: sql.ErrNoRows}, &fakeFaculties{}, nil, zap.NewNop())

	_, err := svc.UpdateProfile(context.Background(), "user-1", dto.UpdateProfileRequest{})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestUserServiceUpdateProfileRejectsBadDOB(t *testing.T) {
	store := &memProfileStore{user: &models.User{ID: "user-1"}}
	svc := NewUserService(store, &fakeStudents{err: sql.ErrNoRows}, &fakeFaculties{}, nil, zap.NewNop())

	dob := "10/03/2001"
	_, err := svc.UpdateProfile(context.Background(), "user-1", dto.UpdateProfileRequest{DOB: &dob})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}
