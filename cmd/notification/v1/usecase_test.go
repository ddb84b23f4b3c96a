package notification

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

type fakeNotificationRepository struct {
	notifications map[int64]entity.Notification
	nextID        int64
}

func newFakeNotificationRepository() *fakeNotificationRepository {
	return &fakeNotificationRepository{notifications: make(map[int64]entity.Notification), nextID: 1}
}

func (f *fakeNotificationRepository) FindManyByUserId(ctx context.Context, userID int64, limit uint64) ([]entity.Notification, error) {
	var result []entity.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && uint64(len(result)) < limit {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepository) FindOneById(ctx context.Context, id int64) (entity.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return entity.Notification{}, exception.ErrNotFound
	}
	return n, nil
}

func (f *fakeNotificationRepository) Save(ctx context.Context, notification entity.Notification) (int64, error) {
	id := f.nextID
	f.nextID++
	notification.ID = id
	f.notifications[id] = notification
	return id, nil
}

func (f *fakeNotificationRepository) MarkReadById(ctx context.Context, id int64) error {
	n := f.notifications[id]
	n.Read = true
	f.notifications[id] = n
	return nil
}

func (f *fakeNotificationRepository) MarkAllReadByUserId(ctx context.Context, userID int64) error {
	for id, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
			f.notifications[id] = n
		}
	}
	return nil
}

func (f *fakeNotificationRepository) DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) error {
	for _, taskID := range taskIDs {
		for id, n := range f.notifications {
			if n.TaskID != nil && *n.TaskID == taskID {
				delete(f.notifications, id)
			}
		}
	}
	return nil
}

type fakeTaskStore struct {
	upcoming []entity.Task
	gotScope *int64
	gotLimit uint64
}

func (f *fakeTaskStore) FindUpcoming(ctx context.Context, countyID *int64, from time.Time, to time.Time, limit uint64) ([]entity.Task, error) {
	f.gotScope = countyID
	f.gotLimit = limit
	if countyID == nil {
		return f.upcoming, nil
	}
	var result []entity.Task
	for _, t := range f.upcoming {
		if t.CountyID == *countyID {
			result = append(result, t)
		}
	}
	return result, nil
}

type fakeCountyStore struct {
	counties map[int64]entity.County
}

func (f *fakeCountyStore) FindManyByIds(ctx context.Context, ids []int64) ([]entity.County, error) {
	var result []entity.County
	for _, id := range ids {
		if c, ok := f.counties[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

type notificationFixture struct {
	repo     *fakeNotificationRepository
	tasks    *fakeTaskStore
	counties *fakeCountyStore
	usecase  NotificationUsecase
}

func newNotificationFixture() *notificationFixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &notificationFixture{
		repo:     newFakeNotificationRepository(),
		tasks:    &fakeTaskStore{},
		counties: &fakeCountyStore{counties: make(map[int64]entity.County)},
	}
	f.usecase = NewNotificationUsecase(logger, time.UTC, f.repo, f.tasks, f.counties)
	return f
}

func TestGetManyNotificationsOwnOnly(t *testing.T) {
	f := newNotificationFixture()
	f.repo.notifications[1] = entity.Notification{ID: 1, UserID: 10, Title: "Mine"}
	f.repo.notifications[2] = entity.Notification{ID: 2, UserID: 11, Title: "Someone else's"}

	resp := f.usecase.GetManyNotifications(context.Background(), entity.User{ID: 10})

	require.Nil(t, resp.Err)
	data, ok := resp.Data.([]NotificationResponse)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "Mine", data[0].Title)
}

func TestGetUpcomingTasksScopesCountyUser(t *testing.T) {
	f := newNotificationFixture()
	deadline := time.Now().Add(48 * time.Hour)
	f.tasks.upcoming = []entity.Task{
		{ID: 1, Title: "Own deadline", CountyID: 5, Deadline: deadline},
		{ID: 2, Title: "Foreign deadline", CountyID: 6, Deadline: deadline},
	}
	f.counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}

	countyID := int64(5)
	actor := entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}
	resp := f.usecase.GetUpcomingTasks(context.Background(), actor)

	require.Nil(t, resp.Err)
	require.NotNil(t, f.tasks.gotScope)
	assert.Equal(t, int64(5), *f.tasks.gotScope)
	assert.Equal(t, uint64(10), f.tasks.gotLimit)

	data, ok := resp.Data.([]UpcomingTaskResponse)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "Hamilton", data[0].CountyName)
}

func TestGetUpcomingTasksAdminSeesAll(t *testing.T) {
	f := newNotificationFixture()
	f.tasks.upcoming = []entity.Task{
		{ID: 1, CountyID: 5, Deadline: time.Now()},
		{ID: 2, CountyID: 6, Deadline: time.Now()},
	}

	resp := f.usecase.GetUpcomingTasks(context.Background(), entity.User{ID: 1, Role: entity.RoleAdmin})

	require.Nil(t, resp.Err)
	assert.Nil(t, f.tasks.gotScope)
	data, ok := resp.Data.([]UpcomingTaskResponse)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestMarkReadOwnership(t *testing.T) {
	f := newNotificationFixture()
	f.repo.notifications[1] = entity.Notification{ID: 1, UserID: 11}

	resp := f.usecase.MarkRead(context.Background(), entity.User{ID: 10}, 1)

	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
	assert.False(t, f.repo.notifications[1].Read)
}

func TestMarkRead(t *testing.T) {
	f := newNotificationFixture()
	f.repo.notifications[1] = entity.Notification{ID: 1, UserID: 10}

	resp := f.usecase.MarkRead(context.Background(), entity.User{ID: 10}, 1)

	require.Nil(t, resp.Err)
	assert.True(t, f.repo.notifications[1].Read)
}

func TestMarkReadMissing(t *testing.T) {
	f := newNotificationFixture()

	resp := f.usecase.MarkRead(context.Background(), entity.User{ID: 10}, 42)

	assert.Equal(t, http.StatusNotFound, resp.HTTPCode)
}

func TestMarkAllRead(t *testing.T) {
	f := newNotificationFixture()
	f.repo.notifications[1] = entity.Notification{ID: 1, UserID: 10}
	f.repo.notifications[2] = entity.Notification{ID: 2, UserID: 10}
	f.repo.notifications[3] = entity.Notification{ID: 3, UserID: 11}

	resp := f.usecase.MarkAllRead(context.Background(), entity.User{ID: 10})

	require.Nil(t, resp.Err)
	assert.True(t, f.repo.notifications[1].Read)
	assert.True(t, f.repo.notifications[2].Read)
	assert.False(t, f.repo.notifications[3].Read)
}
