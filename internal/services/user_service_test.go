package services

import (
	"context"
	"testing"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserFixture() (*MockRepository, UserService) {
	repo := NewMockRepository()
	svc := NewUserService(repo, authz.NewEngine(), validator.New(), testLogger())
	return repo, svc
}

func TestUserService_Get_EmailPrivacy(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	email := "student@example.com"
	repo.user.On("GetByID", ctx, uint(42)).Return(&models.User{ID: 42, FullName: "Student", Email: &email}, nil)

	self := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	resp, err := svc.Get(ctx, self, 42)
	assert.NoError(t, err)
	assert.NotNil(t, resp.Email, "own profile shows the email")

	other := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet(nil)}
	resp, err = svc.Get(ctx, other, 42)
	assert.NoError(t, err)
	assert.Nil(t, resp.Email, "foreign profiles hide the email")

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserDataRead})}
	resp, err = svc.Get(ctx, admin, 42)
	assert.NoError(t, err)
	assert.NotNil(t, resp.Email)
}

func TestUserService_SetFullName_SelfOnly(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	repo.user.On("UpdateFullName", ctx, uint(42), "New Name").Return(nil)

	self := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	assert.NoError(t, svc.SetFullName(ctx, self, 42, "New Name"))

	other := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet(nil)}
	err := svc.SetFullName(ctx, other, 42, "New Name")
	assert.True(t, IsForbidden(err))

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserFullNameWrite})}
	assert.NoError(t, svc.SetFullName(ctx, admin, 42, "New Name"))
}

func TestUserService_SetFullName_Validates(t *testing.T) {
	_, svc := newUserFixture()
	ctx := context.Background()

	self := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	err := svc.SetFullName(ctx, self, 42, "")

	assert.True(t, IsValidation(err))
}

func TestUserService_SetBlocked_RejectsSelf(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserBlockWrite})}
	err := svc.SetBlocked(ctx, admin, 7, true)

	assert.ErrorIs(t, err, ErrSelfBlock)
	repo.user.AssertNotCalled(t, "SetBlocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_SetBlocked(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	repo.user.On("SetBlocked", ctx, uint(42), true).Return(nil)

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserBlockWrite})}
	assert.NoError(t, svc.SetBlocked(ctx, admin, 42, true))

	plain := authz.Actor{UserID: 8, Permissions: authz.NewPermissionSet(nil)}
	err := svc.SetBlocked(ctx, plain, 42, true)
	assert.True(t, IsForbidden(err))
}

func TestUserService_SetRoles(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(42)).Return(&models.User{ID: 42}, nil)
	repo.user.On("SetRoles", ctx, uint(42), []models.Role{models.RoleTeacher}).Return(nil)

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserRolesWrite})}
	assert.NoError(t, svc.SetRoles(ctx, admin, 42, []models.Role{models.RoleTeacher}))

	err := svc.SetRoles(ctx, admin, 42, []models.Role{models.Role("janitor")})
	assert.True(t, IsValidation(err))
}

func TestUserService_List_RequiresPermission(t *testing.T) {
	repo, svc := newUserFixture()
	ctx := context.Background()

	repo.user.On("List", ctx).Return([]*models.User{{ID: 1}, {ID: 2}}, nil)

	plain := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	_, err := svc.List(ctx, plain)
	assert.True(t, IsForbidden(err))

	admin := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet([]string{authz.PermUserListRead})}
	users, err := svc.List(ctx, admin)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
}
