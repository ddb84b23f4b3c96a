package auth

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	usersByEmail map[string]entity.User
	saved        []entity.User
	taken        map[string]bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{usersByEmail: make(map[string]entity.User), taken: make(map[string]bool)}
}

func (f *fakeUserStore) FindOneByEmail(ctx context.Context, email string) (entity.User, error) {
	u, ok := f.usersByEmail[email]
	if !ok {
		return entity.User{}, exception.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	return f.taken[username] || f.taken[email], nil
}

func (f *fakeUserStore) Save(ctx context.Context, user entity.User) (int64, error) {
	f.saved = append(f.saved, user)
	return int64(len(f.saved)), nil
}

type fakeCountyStore struct {
	counties map[int64]entity.County
}

func (f *fakeCountyStore) FindOneById(ctx context.Context, id int64) (entity.County, error) {
	c, ok := f.counties[id]
	if !ok {
		return entity.County{}, exception.ErrNotFound
	}
	return c, nil
}

func newAuthFixture() (*fakeUserStore, *fakeCountyStore, AuthUsecase) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := newFakeUserStore()
	counties := &fakeCountyStore{counties: make(map[int64]entity.County)}
	usecase := NewAuthUsecase(logger, time.UTC, "test-secret", 7*24*time.Hour, users, counties)
	return users, counties, usecase
}

var admin = entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin}

func TestLogin(t *testing.T) {
	users, _, usecase := newAuthFixture()
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret1!pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users.usersByEmail["admin@civisight.org"] = entity.User{
		ID:           1,
		Username:     "admin",
		Email:        "admin@civisight.org",
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
	}

	resp := usecase.Login(context.Background(), LoginRequest{Email: "Admin@CiviSight.org", Password: "Secret1!pass"})

	require.Nil(t, resp.Err)
	data, ok := resp.Data.(LoginResponse)
	require.True(t, ok)
	assert.Equal(t, "admin", data.User.Username)

	token, err := jwt.ParseWithClaims(data.Token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
}

func TestLoginWrongPassword(t *testing.T) {
	users, _, usecase := newAuthFixture()
	hash, _ := bcrypt.GenerateFromPassword([]byte("Secret1!pass"), bcrypt.DefaultCost)
	users.usersByEmail["admin@civisight.org"] = entity.User{Email: "admin@civisight.org", PasswordHash: string(hash)}

	resp := usecase.Login(context.Background(), LoginRequest{Email: "admin@civisight.org", Password: "wrong"})

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	_, _, usecase := newAuthFixture()

	resp := usecase.Login(context.Background(), LoginRequest{Email: "nobody@civisight.org", Password: "whatever"})

	// same message as a wrong password so the endpoint leaks nothing
	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestRegisterCountyUser(t *testing.T) {
	users, counties, usecase := newAuthFixture()
	counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}

	countyID := int64(5)
	resp := usecase.Register(context.Background(), admin, RegisterRequest{
		Username: "hamilton_clerk",
		Email:    "Clerk@Hamilton.gov",
		Password: "Str0ng!pass",
		Role:     entity.RoleCountyUser,
		CountyID: &countyID,
	})

	require.Nil(t, resp.Err)
	assert.Equal(t, http.StatusCreated, resp.HTTPCode)

	require.Len(t, users.saved, 1)
	saved := users.saved[0]
	assert.Equal(t, "clerk@hamilton.gov", saved.Email)
	assert.NotEqual(t, "Str0ng!pass", saved.PasswordHash)
	require.NotNil(t, saved.CountyID)
	assert.Equal(t, int64(5), *saved.CountyID)
}

func TestRegisterForbiddenForCountyUser(t *testing.T) {
	users, _, usecase := newAuthFixture()
	countyID := int64(5)

	resp := usecase.Register(context.Background(), entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}, RegisterRequest{
		Username: "intruder",
		Email:    "intruder@example.com",
		Password: "Str0ng!pass",
		Role:     entity.RoleAdmin,
	})

	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
	assert.Empty(t, users.saved)
}

func TestRegisterWeakPassword(t *testing.T) {
	users, _, usecase := newAuthFixture()

	resp := usecase.Register(context.Background(), admin, RegisterRequest{
		Username: "newadmin",
		Email:    "newadmin@civisight.org",
		Password: "alllowercase1",
		Role:     entity.RoleAdmin,
	})

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Empty(t, users.saved)
}

func TestRegisterCountyUserRequiresCounty(t *testing.T) {
	_, _, usecase := newAuthFixture()

	resp := usecase.Register(context.Background(), admin, RegisterRequest{
		Username: "hamilton_clerk",
		Email:    "clerk@hamilton.gov",
		Password: "Str0ng!pass",
		Role:     entity.RoleCountyUser,
	})

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "County ID is required for county users", resp.Message)
}

func TestRegisterUnknownCounty(t *testing.T) {
	_, _, usecase := newAuthFixture()

	countyID := int64(42)
	resp := usecase.Register(context.Background(), admin, RegisterRequest{
		Username: "hamilton_clerk",
		Email:    "clerk@hamilton.gov",
		Password: "Str0ng!pass",
		Role:     entity.RoleCountyUser,
		CountyID: &countyID,
	})

	assert.Equal(t, http.StatusNotFound, resp.HTTPCode)
}

func TestRegisterDuplicate(t *testing.T) {
	users, _, usecase := newAuthFixture()
	users.taken["newadmin"] = true

	resp := usecase.Register(context.Background(), admin, RegisterRequest{
		Username: "newadmin",
		Email:    "newadmin@civisight.org",
		Password: "Str0ng!pass",
		Role:     entity.RoleAdmin,
	})

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "User with this email or username already exists", resp.Message)
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, strongPassword("Str0ng!pass"))
	assert.False(t, strongPassword("weakpassword"))
	assert.False(t, strongPassword("NoDigits!here"))
	assert.False(t, strongPassword("nodigit1!lower"))
	assert.False(t, strongPassword("NOLOWER1!CAPS"))
	assert.False(t, strongPassword("NoSpecial1here"))
}

func TestMe(t *testing.T) {
	_, _, usecase := newAuthFixture()
	countyID := int64(5)
	actor := entity.User{ID: 10, Username: "hamilton_clerk", Email: "clerk@hamilton.gov", Role: entity.RoleCountyUser, CountyID: &countyID}

	resp := usecase.Me(context.Background(), actor)

	require.Nil(t, resp.Err)
	data, ok := resp.Data.(Profile)
	require.True(t, ok)
	assert.Equal(t, "hamilton_clerk", data.Username)
	require.NotNil(t, data.CountyID)
	assert.Equal(t, int64(5), *data.CountyID)
}
