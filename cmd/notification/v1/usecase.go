package notification

import (
	"context"
	"net/http"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"

	"github.com/sirupsen/logrus"
)

const (
	listLimit       = 50
	upcomingWindow  = 7 * 24 * time.Hour
	upcomingLimit   = 10
)

type TaskStore interface {
	FindUpcoming(ctx context.Context, countyID *int64, from time.Time, to time.Time, limit uint64) ([]entity.Task, error)
}

type CountyStore interface {
	FindManyByIds(ctx context.Context, ids []int64) ([]entity.County, error)
}

type NotificationUsecase interface {
	GetManyNotifications(ctx context.Context, actor entity.User) (resp response.Response)
	GetUpcomingTasks(ctx context.Context, actor entity.User) (resp response.Response)
	MarkRead(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	MarkAllRead(ctx context.Context, actor entity.User) (resp response.Response)
}

type notificationUsecase struct {
	logger                 *logrus.Logger
	location               *time.Location
	notificationRepository NotificationRepository
	tasks                  TaskStore
	counties               CountyStore
}

func NewNotificationUsecase(logger *logrus.Logger, location *time.Location, notificationRepository NotificationRepository, tasks TaskStore, counties CountyStore) NotificationUsecase {
	return &notificationUsecase{
		logger:                 logger,
		location:               location,
		notificationRepository: notificationRepository,
		tasks:                  tasks,
		counties:               counties,
	}
}

// GetManyNotifications implements Usecase. Only the actor's own
// notifications, newest first, capped at 50.
func (u *notificationUsecase) GetManyNotifications(ctx context.Context, actor entity.User) (resp response.Response) {
	result, err := u.notificationRepository.FindManyByUserId(ctx, actor.ID, listLimit)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	notificationsResponse := make([]NotificationResponse, len(result))
	for i, v := range result {
		notificationsResponse[i] = NotificationResponse{
			ID:        v.ID,
			Type:      v.Type,
			Title:     v.Title,
			Message:   v.Message,
			TaskID:    v.TaskID,
			Read:      v.Read,
			CreatedAt: v.CreatedAt,
		}
	}

	return response.NewSuccessResponse(notificationsResponse, response.StatOK, "")
}

// GetUpcomingTasks implements Usecase. Admins see every county's deadlines;
// county users only their own.
func (u *notificationUsecase) GetUpcomingTasks(ctx context.Context, actor entity.User) (resp response.Response) {
	var countyID *int64
	if !policy.IsAdmin(actor) {
		if actor.CountyID == nil {
			return response.NewSuccessResponse([]UpcomingTaskResponse{}, response.StatOK, "")
		}
		countyID = actor.CountyID
	}

	now := time.Now().In(u.location)
	result, err := u.tasks.FindUpcoming(ctx, countyID, now, now.Add(upcomingWindow), upcomingLimit)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	countyNames := u.resolveCountyNames(ctx, result)

	upcomingResponse := make([]UpcomingTaskResponse, len(result))
	for i, v := range result {
		upcomingResponse[i] = UpcomingTaskResponse{
			ID:         v.ID,
			Title:      v.Title,
			CountyID:   v.CountyID,
			CountyName: countyNames[v.CountyID],
			Status:     v.Status,
			Priority:   v.Priority,
			Deadline:   v.Deadline,
		}
	}

	return response.NewSuccessResponse(upcomingResponse, response.StatOK, "")
}

// MarkRead implements Usecase. A notification belonging to another user is
// visible as forbidden, not hidden as missing.
func (u *notificationUsecase) MarkRead(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	notification, err := u.notificationRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "Notification not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if notification.UserID != actor.ID {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if err := u.notificationRepository.MarkReadById(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(nil, response.StatOK, "Notification marked as read")
}

// MarkAllRead implements Usecase
func (u *notificationUsecase) MarkAllRead(ctx context.Context, actor entity.User) (resp response.Response) {
	if err := u.notificationRepository.MarkAllReadByUserId(ctx, actor.ID); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(nil, response.StatOK, "All notifications marked as read")
}

func (u *notificationUsecase) resolveCountyNames(ctx context.Context, tasks []entity.Task) map[int64]string {
	names := make(map[int64]string)
	if len(tasks) == 0 {
		return names
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, t := range tasks {
		if !seen[t.CountyID] {
			seen[t.CountyID] = true
			ids = append(ids, t.CountyID)
		}
	}

	counties, err := u.counties.FindManyByIds(ctx, ids)
	if err != nil {
		u.logger.WithContext(ctx).Errorf("failed to resolve county names: %v", err)
		return names
	}

	for _, c := range counties {
		names[c.ID] = c.Name
	}
	return names
}
