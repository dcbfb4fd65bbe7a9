package users

import (
	"context"
	"testing"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUsersTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return &Service{DB: db}, db
}

func createUser(t *testing.T, s *Service, email, role string) *models.User {
	u, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "Str0ngPass!",
		Fullname: "Some Person",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestCreateUser_DefaultsToViewer(t *testing.T) {
	s, _ := setupUsersTest(t)
	u, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    "new@sponsorhub.app",
		Password: "Str0ngPass!",
		Fullname: "New Person",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.Viewer, u.Role)
	assert.NotEqual(t, "Str0ngPass!", u.PasswordHash)
}

func TestCreateUser_RejectsBadEmail(t *testing.T) {
	s, _ := setupUsersTest(t)
	_, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    "not-an-email",
		Password: "Str0ngPass!",
		Fullname: "X Y",
	})
	assert.Equal(t, ErrInvalidEmailFormat, err)
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	s, _ := setupUsersTest(t)
	_, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    "x@y.com",
		Password: "Str0ngPass!",
		Fullname: "X Y",
		Role:     "superuser",
	})
	assert.Equal(t, ErrInvalidRole, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, _ := setupUsersTest(t)
	createUser(t, s, "dup@sponsorhub.app", constants.Department)
	_, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    "dup@sponsorhub.app",
		Password: "Str0ngPass!",
		Fullname: "Other Person",
	})
	assert.Equal(t, ErrEmailRegistered, err)
}

func TestUpdateRole_SelfChangeBlocked(t *testing.T) {
	s, _ := setupUsersTest(t)
	u := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	_, err := s.UpdateRole(context.Background(), u.UserID.String(), u.UserID, constants.Viewer)
	assert.Equal(t, ErrCannotModifyOwnRole, err)
}

func TestUpdateRole_LastAdminProtected(t *testing.T) {
	s, _ := setupUsersTest(t)
	admin := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	actor := createUser(t, s, "finance@sponsorhub.app", constants.Finance)
	_, err := s.UpdateRole(context.Background(), actor.UserID.String(), admin.UserID, constants.Viewer)
	assert.Equal(t, ErrMustKeepOneAdmin, err)
}

func TestUpdateRole_Success(t *testing.T) {
	s, _ := setupUsersTest(t)
	admin := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	target := createUser(t, s, "dept@sponsorhub.app", constants.Viewer)
	got, err := s.UpdateRole(context.Background(), admin.UserID.String(), target.UserID, constants.Department)
	require.NoError(t, err)
	assert.Equal(t, constants.Department, got.Role)
}

func TestUpdateRole_UnknownTarget(t *testing.T) {
	s, _ := setupUsersTest(t)
	admin := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	_, err := s.UpdateRole(context.Background(), admin.UserID.String(), uuid.New(), constants.Viewer)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestRemoveUser_LastAdminProtected(t *testing.T) {
	s, _ := setupUsersTest(t)
	admin := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	actor := createUser(t, s, "dept@sponsorhub.app", constants.Department)
	err := s.RemoveUser(context.Background(), actor.UserID.String(), admin.UserID)
	assert.Equal(t, ErrMustKeepOneAdmin, err)
}

func TestRemoveUser_SoftDeletes(t *testing.T) {
	s, db := setupUsersTest(t)
	admin := createUser(t, s, "admin@sponsorhub.app", constants.Admin)
	target := createUser(t, s, "gone@sponsorhub.app", constants.Viewer)

	require.NoError(t, s.RemoveUser(context.Background(), admin.UserID.String(), target.UserID))

	_, err := s.GetUser(context.Background(), target.UserID)
	assert.Equal(t, ErrUserNotFound, err)

	// Row still exists under soft delete.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("user_id = ?", target.UserID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateUser_PatchesFields(t *testing.T) {
	s, _ := setupUsersTest(t)
	u := createUser(t, s, "dept@sponsorhub.app", constants.Department)
	dept := "media"
	name := "Renamed Person"
	got, err := s.UpdateUser(context.Background(), u.UserID, UpdateUserInput{
		Fullname:   &name,
		Department: &dept,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Person", got.Fullname)
	require.NotNil(t, got.Department)
	assert.Equal(t, "media", *got.Department)
}
