package county

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCountyRepository struct {
	counties    map[int64]entity.County
	nextID      int64
	saveErr     error
	deleteGuard func() error
}

func newFakeCountyRepository() *fakeCountyRepository {
	return &fakeCountyRepository{counties: make(map[int64]entity.County), nextID: 1}
}

func (f *fakeCountyRepository) FindMany(ctx context.Context) ([]entity.County, error) {
	var result []entity.County
	for _, c := range f.counties {
		result = append(result, c)
	}
	return result, nil
}

func (f *fakeCountyRepository) FindManyByIds(ctx context.Context, ids []int64) ([]entity.County, error) {
	var result []entity.County
	for _, id := range ids {
		if c, ok := f.counties[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCountyRepository) FindOneById(ctx context.Context, id int64) (entity.County, error) {
	c, ok := f.counties[id]
	if !ok {
		return entity.County{}, exception.ErrNotFound
	}
	return c, nil
}

func (f *fakeCountyRepository) Save(ctx context.Context, county entity.County) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	id := f.nextID
	f.nextID++
	county.ID = id
	f.counties[id] = county
	return id, nil
}

func (f *fakeCountyRepository) UpdateById(ctx context.Context, id int64, county entity.County) error {
	county.ID = id
	f.counties[id] = county
	return nil
}

func (f *fakeCountyRepository) DeleteById(ctx context.Context, id int64) error {
	if f.deleteGuard != nil {
		if err := f.deleteGuard(); err != nil {
			return err
		}
	}
	delete(f.counties, id)
	return nil
}

type fakeTaskStore struct {
	tasks           map[int64][]entity.Task
	deletedCounties []int64
}

func (f *fakeTaskStore) FindManyByCountyId(ctx context.Context, countyID int64) ([]entity.Task, error) {
	return f.tasks[countyID], nil
}

func (f *fakeTaskStore) DeleteManyByCountyId(ctx context.Context, countyID int64) error {
	f.deletedCounties = append(f.deletedCounties, countyID)
	delete(f.tasks, countyID)
	return nil
}

type fakeNotificationStore struct {
	deletedTaskIDs []int64
}

func (f *fakeNotificationStore) DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) error {
	f.deletedTaskIDs = append(f.deletedTaskIDs, taskIDs...)
	return nil
}

type fakeContactStore struct {
	deletedCounties []int64
}

func (f *fakeContactStore) DeleteManyByCountyId(ctx context.Context, countyID int64) error {
	f.deletedCounties = append(f.deletedCounties, countyID)
	return nil
}

type fakeUserStore struct {
	saved     []entity.User
	taken     map[string]bool
	existsErr error
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.taken[username] || f.taken[email], nil
}

func (f *fakeUserStore) Save(ctx context.Context, user entity.User) (int64, error) {
	f.saved = append(f.saved, user)
	return int64(len(f.saved)), nil
}

type fakeStorage struct {
	deleted []string
}

func (f *fakeStorage) PutObject(ctx context.Context, bucketName string, objectName string, reader io.Reader, contentType string, metadata map[string]string) error {
	return nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, bucketName string, objectName string) error {
	f.deleted = append(f.deleted, objectName)
	return nil
}

func (f *fakeStorage) SignedURL(bucketName string, objectName string, expiry time.Duration) (string, error) {
	return "", nil
}

type countyFixture struct {
	repo          *fakeCountyRepository
	tasks         *fakeTaskStore
	notifications *fakeNotificationStore
	contacts      *fakeContactStore
	users         *fakeUserStore
	storage       *fakeStorage
	usecase       CountyUsecase
}

func newCountyFixture() *countyFixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &countyFixture{
		repo:          newFakeCountyRepository(),
		tasks:         &fakeTaskStore{tasks: make(map[int64][]entity.Task)},
		notifications: &fakeNotificationStore{},
		contacts:      &fakeContactStore{},
		users:         &fakeUserStore{taken: make(map[string]bool)},
		storage:       &fakeStorage{},
	}
	f.usecase = NewCountyUsecase(logger, time.UTC, f.repo, f.tasks, f.notifications, f.contacts, f.users, f.storage, "test-bucket")
	return f
}

var admin = entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin}

func TestCreateCountyProvisionsUser(t *testing.T) {
	f := newCountyFixture()

	resp := f.usecase.CreateCounty(context.Background(), admin, CountyRequest{
		Name:  "Hamilton County",
		Code:  "HAM",
		Email: "Clerk@Hamilton.gov",
	})

	require.Nil(t, resp.Err)
	assert.Equal(t, http.StatusCreated, resp.HTTPCode)

	data, ok := resp.Data.(CreateCountyResponse)
	require.True(t, ok)
	assert.Equal(t, "clerk@hamilton.gov", data.County.Email)

	require.NotNil(t, data.ProvisionedUser)
	assert.Equal(t, "hamiltoncounty_user", data.ProvisionedUser.Username)
	assert.Equal(t, "hamiltoncounty@civisight.org", data.ProvisionedUser.Email)
	assert.NotEmpty(t, data.ProvisionedUser.Password)

	require.Len(t, f.users.saved, 1)
	provisioned := f.users.saved[0]
	assert.Equal(t, entity.RoleCountyUser, provisioned.Role)
	require.NotNil(t, provisioned.CountyID)
	assert.Equal(t, data.County.ID, *provisioned.CountyID)
	assert.NotEqual(t, data.ProvisionedUser.Password, provisioned.PasswordHash)
}

func TestCreateCountyProvisionFailureStillCreates(t *testing.T) {
	f := newCountyFixture()
	f.users.taken["hamiltoncounty_user"] = true

	resp := f.usecase.CreateCounty(context.Background(), admin, CountyRequest{
		Name: "Hamilton County",
		Code: "HAM",
	})

	require.Nil(t, resp.Err)
	assert.Equal(t, http.StatusCreated, resp.HTTPCode)

	data, ok := resp.Data.(CreateCountyResponse)
	require.True(t, ok)
	assert.Nil(t, data.ProvisionedUser)
	assert.Len(t, f.repo.counties, 1)
}

func TestCreateCountyConflict(t *testing.T) {
	f := newCountyFixture()
	f.repo.saveErr = exception.ErrConflict

	resp := f.usecase.CreateCounty(context.Background(), admin, CountyRequest{
		Name: "Hamilton County",
		Code: "HAM",
	})

	assert.Equal(t, http.StatusBadRequest, resp.HTTPCode)
	assert.Equal(t, "County with this name or code already exists", resp.Message)
}

func TestCreateCountyForbidden(t *testing.T) {
	f := newCountyFixture()
	countyID := int64(5)

	resp := f.usecase.CreateCounty(context.Background(), entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}, CountyRequest{
		Name: "Hamilton County",
		Code: "HAM",
	})

	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
	assert.Empty(t, f.repo.counties)
}

func TestGetManyCountiesStats(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	f.tasks.tasks[5] = []entity.Task{
		{ID: 1, CountyID: 5, Status: entity.TaskStatusPending},
		{ID: 2, CountyID: 5, Status: entity.TaskStatusInProgress},
		{ID: 3, CountyID: 5, Status: entity.TaskStatusCompleted},
		{ID: 4, CountyID: 5, Status: entity.TaskStatusPending},
	}

	resp := f.usecase.GetManyCounties(context.Background(), admin)

	require.Nil(t, resp.Err)
	data, ok := resp.Data.([]CountyResponse)
	require.True(t, ok)
	require.Len(t, data, 1)
	require.NotNil(t, data[0].TaskStats)
	assert.Equal(t, 4, data[0].TaskStats.Total)
	assert.Equal(t, 2, data[0].TaskStats.Pending)
	assert.Equal(t, 1, data[0].TaskStats.InProgress)
	assert.Equal(t, 1, data[0].TaskStats.Completed)
}

func TestGetManyCountiesScopesCountyUser(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	f.repo.counties[6] = entity.County{ID: 6, Name: "Davidson"}

	countyID := int64(5)
	resp := f.usecase.GetManyCounties(context.Background(), entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID})

	require.Nil(t, resp.Err)
	data, ok := resp.Data.([]CountyResponse)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "Hamilton", data[0].Name)
}

func TestGetOneCountyForeign(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[6] = entity.County{ID: 6, Name: "Davidson"}

	countyID := int64(5)
	resp := f.usecase.GetOneCounty(context.Background(), entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}, 6)

	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
}

func TestDeleteCountyCascades(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	uploadedBy := int64(10)
	f.tasks.tasks[5] = []entity.Task{
		{
			ID:       1,
			CountyID: 5,
			FormFile: &entity.TaskFile{StorageKey: "forms/a"},
			FilledFormFile: &entity.TaskFile{
				StorageKey: "filled-forms/b",
				UploadedBy: &uploadedBy,
			},
		},
		{ID: 2, CountyID: 5},
	}

	resp := f.usecase.DeleteCounty(context.Background(), admin, 5)

	require.Nil(t, resp.Err)
	assert.Empty(t, f.repo.counties)
	assert.Equal(t, []int64{5}, f.tasks.deletedCounties)
	assert.ElementsMatch(t, []int64{1, 2}, f.notifications.deletedTaskIDs)
	assert.ElementsMatch(t, []string{"forms/a", "filled-forms/b"}, f.storage.deleted)
	assert.Equal(t, []int64{5}, f.contacts.deletedCounties)
}

// Task and contact rows carry foreign keys to the county, so the database
// rejects DELETE FROM county while any of them remain. The guard mimics that
// constraint: the county delete only succeeds once the child rows are gone.
func TestDeleteCountyRemovesChildRowsFirst(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	f.tasks.tasks[5] = []entity.Task{{ID: 1, CountyID: 5}, {ID: 2, CountyID: 5}}
	f.repo.deleteGuard = func() error {
		if len(f.tasks.tasks[5]) > 0 {
			return exception.ErrInternalServer
		}
		if len(f.contacts.deletedCounties) == 0 {
			return exception.ErrInternalServer
		}
		return nil
	}

	resp := f.usecase.DeleteCounty(context.Background(), admin, 5)

	require.Nil(t, resp.Err)
	assert.Equal(t, http.StatusOK, resp.HTTPCode)
	assert.Empty(t, f.repo.counties)
}

func TestDeleteCountyKeepsUsers(t *testing.T) {
	f := newCountyFixture()
	f.repo.counties[5] = entity.County{ID: 5, Name: "Hamilton"}

	resp := f.usecase.DeleteCounty(context.Background(), admin, 5)

	require.Nil(t, resp.Err)
	assert.Empty(t, f.users.saved)
}

func TestUpdateCountyMissing(t *testing.T) {
	f := newCountyFixture()

	resp := f.usecase.UpdateCounty(context.Background(), admin, 42, CountyRequest{Name: "Hamilton", Code: "HAM"})

	assert.Equal(t, http.StatusNotFound, resp.HTTPCode)
}
