package user

import (
	"context"
	"io"
	"net/http"
	"testing"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	users map[int64]entity.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[int64]entity.User)}
}

func (f *fakeUserRepository) FindMany(ctx context.Context) ([]entity.User, error) {
	var result []entity.User
	for _, u := range f.users {
		result = append(result, u)
	}
	return result, nil
}

func (f *fakeUserRepository) FindManyByRole(ctx context.Context, role string) ([]entity.User, error) {
	var result []entity.User
	for _, u := range f.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserRepository) FindManyCountyUsers(ctx context.Context, countyID int64) ([]entity.User, error) {
	var result []entity.User
	for _, u := range f.users {
		if u.Role == entity.RoleCountyUser && u.CountyID != nil && *u.CountyID == countyID {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserRepository) FindOneById(ctx context.Context, id int64) (entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return entity.User{}, exception.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepository) FindOneByEmail(ctx context.Context, email string) (entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return entity.User{}, exception.ErrNotFound
}

func (f *fakeUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepository) Save(ctx context.Context, user entity.User) (int64, error) {
	id := int64(len(f.users) + 1)
	user.ID = id
	f.users[id] = user
	return id, nil
}

func (f *fakeUserRepository) DeleteById(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func newUserFixture() (*fakeUserRepository, UserUsecase) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeUserRepository()
	return repo, NewUserUsecase(logger, repo)
}

var admin = entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin}

func TestGetManyUsersAdminOnly(t *testing.T) {
	repo, usecase := newUserFixture()
	countyID := int64(5)
	repo.users[1] = admin
	repo.users[2] = entity.User{ID: 2, Username: "hamilton_user", Role: entity.RoleCountyUser, CountyID: &countyID}

	resp := usecase.GetManyUsers(context.Background(), admin)
	require.Nil(t, resp.Err)
	data, ok := resp.Data.([]UserResponse)
	require.True(t, ok)
	assert.Len(t, data, 2)

	resp = usecase.GetManyUsers(context.Background(), repo.users[2])
	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
}

func TestGetAdmins(t *testing.T) {
	repo, usecase := newUserFixture()
	countyID := int64(5)
	repo.users[1] = admin
	repo.users[2] = entity.User{ID: 2, Role: entity.RoleCountyUser, CountyID: &countyID}

	resp := usecase.GetAdmins(context.Background(), admin)

	require.Nil(t, resp.Err)
	data, ok := resp.Data.([]UserResponse)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "admin", data[0].Username)
}

func TestDeleteUser(t *testing.T) {
	repo, usecase := newUserFixture()
	repo.users[1] = admin
	repo.users[2] = entity.User{ID: 2, Username: "other"}

	resp := usecase.DeleteUser(context.Background(), admin, 2)

	require.Nil(t, resp.Err)
	_, exists := repo.users[2]
	assert.False(t, exists)
}

func TestDeleteUserSelf(t *testing.T) {
	repo, usecase := newUserFixture()
	repo.users[1] = admin

	resp := usecase.DeleteUser(context.Background(), admin, 1)

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "Cannot delete your own account", resp.Message)
	_, exists := repo.users[1]
	assert.True(t, exists)
}

func TestDeleteUserMissing(t *testing.T) {
	_, usecase := newUserFixture()

	resp := usecase.DeleteUser(context.Background(), admin, 42)

	assert.Equal(t, http.StatusNotFound, resp.HTTPCode)
}
