package county

import (
	"context"
	"net/http"
	"strings"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"
	"county-task-api/pkg/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const provisionedEmailDomain = "civisight.org"

// TaskStore is the slice of the task repository the county module needs for
// stat rollups and cascade deletion.
type TaskStore interface {
	FindManyByCountyId(ctx context.Context, countyID int64) ([]entity.Task, error)
	DeleteManyByCountyId(ctx context.Context, countyID int64) error
}

type NotificationStore interface {
	DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) error
}

type ContactStore interface {
	DeleteManyByCountyId(ctx context.Context, countyID int64) error
}

type UserStore interface {
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	Save(ctx context.Context, user entity.User) (int64, error)
}

type CountyUsecase interface {
	GetManyCounties(ctx context.Context, actor entity.User) (resp response.Response)
	GetOneCounty(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	CreateCounty(ctx context.Context, actor entity.User, payload CountyRequest) (resp response.Response)
	UpdateCounty(ctx context.Context, actor entity.User, id int64, payload CountyRequest) (resp response.Response)
	DeleteCounty(ctx context.Context, actor entity.User, id int64) (resp response.Response)
}

type countyUsecase struct {
	logger           *logrus.Logger
	location         *time.Location
	countyRepository CountyRepository
	tasks            TaskStore
	notifications    NotificationStore
	contacts         ContactStore
	users            UserStore
	storage          storage.Storage
	bucketName       string
}

func NewCountyUsecase(logger *logrus.Logger, location *time.Location, countyRepository CountyRepository, tasks TaskStore, notifications NotificationStore, contacts ContactStore, users UserStore, storage storage.Storage, bucketName string) CountyUsecase {
	return &countyUsecase{
		logger:           logger,
		location:         location,
		countyRepository: countyRepository,
		tasks:            tasks,
		notifications:    notifications,
		contacts:         contacts,
		users:            users,
		storage:          storage,
		bucketName:       bucketName,
	}
}

// GetManyCounties implements Usecase. Admins see every county; county users
// only their own. Each returned county carries task-count rollups.
func (u *countyUsecase) GetManyCounties(ctx context.Context, actor entity.User) (resp response.Response) {
	var counties []entity.County
	var err error

	if policy.IsAdmin(actor) {
		counties, err = u.countyRepository.FindMany(ctx)
		if err != nil {
			u.logger.WithContext(ctx).Error(err)
			return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
		}
	} else {
		if actor.CountyID == nil {
			return response.NewSuccessResponse([]CountyResponse{}, response.StatOK, "")
		}
		county, err := u.countyRepository.FindOneById(ctx, *actor.CountyID)
		if err != nil {
			if err == exception.ErrNotFound {
				return response.NewSuccessResponse([]CountyResponse{}, response.StatOK, "")
			}
			u.logger.WithContext(ctx).Error(err)
			return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
		}
		counties = []entity.County{county}
	}

	countiesResponse := make([]CountyResponse, len(counties))
	for i, v := range counties {
		countyResponse := toCountyResponse(v)

		stats, err := u.taskStats(ctx, v.ID)
		if err != nil {
			u.logger.WithContext(ctx).Error(err)
		} else {
			countyResponse.TaskStats = &stats
		}

		countiesResponse[i] = countyResponse
	}

	return response.NewSuccessResponse(countiesResponse, response.StatOK, "")
}

// GetOneCounty implements Usecase
func (u *countyUsecase) GetOneCounty(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	county, err := u.countyRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if !policy.CanAccessCounty(actor, county.ID) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	return response.NewSuccessResponse(toCountyResponse(county), response.StatOK, "")
}

// CreateCounty implements Usecase. A county account is provisioned alongside
// the county with a random one-time password; provisioning failure does not
// fail county creation.
func (u *countyUsecase) CreateCounty(ctx context.Context, actor entity.User, payload CountyRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	county := entity.County{
		Name:        payload.Name,
		Code:        payload.Code,
		Description: payload.Description,
		Email:       strings.ToLower(payload.Email),
		CreatedAt:   time.Now().In(u.location),
	}

	id, err := u.countyRepository.Save(ctx, county)
	if err != nil {
		if err == exception.ErrConflict {
			return response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatConflict, "County with this name or code already exists")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	county.ID = id

	result := CreateCountyResponse{County: toCountyResponse(county)}

	provisioned, err := u.provisionCountyUser(ctx, county)
	if err != nil {
		u.logger.WithContext(ctx).Errorf("failed to provision user for county %d: %v", county.ID, err)
	} else {
		result.ProvisionedUser = &provisioned
	}

	return response.NewCreatedResponse(result, "County created successfully")
}

// UpdateCounty implements Usecase
func (u *countyUsecase) UpdateCounty(ctx context.Context, actor entity.User, id int64, payload CountyRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	county, err := u.countyRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	updatedAt := time.Now().In(u.location)
	county.Name = payload.Name
	county.Code = payload.Code
	county.Description = payload.Description
	county.Email = strings.ToLower(payload.Email)
	county.UpdatedAt = &updatedAt

	if err := u.countyRepository.UpdateById(ctx, id, county); err != nil {
		if err == exception.ErrConflict {
			return response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatConflict, "County with this name or code already exists")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toCountyResponse(county), response.StatOK, "")
}

// DeleteCounty implements Usecase. Tasks, their notifications, stored form
// objects and the contact sheet cascade. Task and contact rows hold foreign
// keys to the county, so they go first; user accounts survive with their
// county reference cleared by the schema.
func (u *countyUsecase) DeleteCounty(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if _, err := u.countyRepository.FindOneById(ctx, id); err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	tasks, err := u.tasks.FindManyByCountyId(ctx, id)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	// Task and contact rows reference the county, so the county row cannot
	// go until they are gone.
	if err := u.tasks.DeleteManyByCountyId(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if err := u.contacts.DeleteManyByCountyId(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if err := u.countyRepository.DeleteById(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	taskIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)

		for _, f := range []*entity.TaskFile{t.FormFile, t.FilledFormFile} {
			if f == nil {
				continue
			}
			if err := u.storage.DeleteObject(ctx, u.bucketName, f.StorageKey); err != nil {
				u.logger.WithContext(ctx).Errorf("failed to delete stored object %s: %v", f.StorageKey, err)
			}
		}
	}

	if len(taskIDs) > 0 {
		if err := u.notifications.DeleteManyByTaskIds(ctx, taskIDs); err != nil {
			u.logger.WithContext(ctx).Errorf("failed to cascade notification deletion for county %d: %v", id, err)
		}
	}

	return response.NewSuccessResponse(nil, response.StatOK, "County deleted successfully")
}

func (u *countyUsecase) provisionCountyUser(ctx context.Context, county entity.County) (ProvisionedUser, error) {
	base := strings.ToLower(strings.ReplaceAll(county.Name, " ", ""))
	username := base + "_user"
	email := base + "@" + provisionedEmailDomain
	password := uuid.NewString()

	exists, err := u.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return ProvisionedUser{}, err
	}
	if exists {
		return ProvisionedUser{}, exception.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ProvisionedUser{}, err
	}

	countyID := county.ID
	if _, err := u.users.Save(ctx, entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleCountyUser,
		CountyID:     &countyID,
		CreatedAt:    time.Now().In(u.location),
	}); err != nil {
		return ProvisionedUser{}, err
	}

	return ProvisionedUser{Username: username, Email: email, Password: password}, nil
}

func (u *countyUsecase) taskStats(ctx context.Context, countyID int64) (TaskStats, error) {
	tasks, err := u.tasks.FindManyByCountyId(ctx, countyID)
	if err != nil {
		return TaskStats{}, err
	}

	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case entity.TaskStatusPending:
			stats.Pending++
		case entity.TaskStatusInProgress:
			stats.InProgress++
		case entity.TaskStatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

func toCountyResponse(v entity.County) CountyResponse {
	return CountyResponse{
		ID:          v.ID,
		Name:        v.Name,
		Code:        v.Code,
		Description: v.Description,
		Email:       v.Email,
		CreatedAt:   v.CreatedAt,
	}
}
