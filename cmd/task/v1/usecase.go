package task

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/mailer"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"
	"county-task-api/pkg/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const downloadURLTTL = time.Hour

// CountyStore is the slice of the county repository this package needs.
type CountyStore interface {
	FindOneById(ctx context.Context, id int64) (entity.County, error)
	FindManyByIds(ctx context.Context, ids []int64) ([]entity.County, error)
}

type UserStore interface {
	FindManyCountyUsers(ctx context.Context, countyID int64) ([]entity.User, error)
}

type NotificationStore interface {
	Save(ctx context.Context, notification entity.Notification) (int64, error)
	DeleteManyByTaskIds(ctx context.Context, taskIDs []int64) error
}

type TaskUsecase interface {
	GetManyTasks(ctx context.Context, actor entity.User, filter TaskFilter) (resp response.Response)
	GetOneTask(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	CreateTask(ctx context.Context, actor entity.User, payload TaskRequest) (resp response.Response)
	CreateBulkTasks(ctx context.Context, actor entity.User, payload BulkTaskRequest) (resp response.Response)
	UpdateTask(ctx context.Context, actor entity.User, id int64, payload UpdateTaskRequest) (resp response.Response)
	DeleteTask(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	SendReminder(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	UploadForm(ctx context.Context, actor entity.User, id int64, payload UploadRequest) (resp response.Response)
	UploadFilledForm(ctx context.Context, actor entity.User, id int64, payload UploadRequest) (resp response.Response)
	DownloadForm(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	DownloadFilledForm(ctx context.Context, actor entity.User, id int64) (resp response.Response)
}

type taskUsecase struct {
	logger         *logrus.Logger
	location       *time.Location
	taskRepository TaskRepository
	counties       CountyStore
	users          UserStore
	notifications  NotificationStore
	mailer         mailer.Mailer
	storage        storage.Storage
	bucketName     string
	fallbackEmail  string
}

func NewTaskUsecase(logger *logrus.Logger, location *time.Location, taskRepository TaskRepository, counties CountyStore, users UserStore, notifications NotificationStore, m mailer.Mailer, s storage.Storage, bucketName string, fallbackEmail string) TaskUsecase {
	return &taskUsecase{
		logger:         logger,
		location:       location,
		taskRepository: taskRepository,
		counties:       counties,
		users:          users,
		notifications:  notifications,
		mailer:         m,
		storage:        s,
		bucketName:     bucketName,
		fallbackEmail:  fallbackEmail,
	}
}

// GetManyTasks implements Usecase. County users are always scoped to their
// own county, whatever filter they send.
func (u *taskUsecase) GetManyTasks(ctx context.Context, actor entity.User, filter TaskFilter) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		if actor.CountyID == nil {
			return response.NewSuccessResponse([]TaskResponse{}, response.StatOK, "")
		}
		filter.CountyID = actor.CountyID
	}

	result, err := u.taskRepository.FindMany(ctx, filter)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	tasksResponse := make([]TaskResponse, len(result))
	for i, v := range result {
		tasksResponse[i] = toTaskResponse(v)
	}

	return response.NewSuccessResponse(tasksResponse, response.StatOK, "")
}

// GetOneTask implements Usecase
func (u *taskUsecase) GetOneTask(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	task, errResp := u.findAccessible(ctx, actor, id)
	if errResp != nil {
		return *errResp
	}

	return response.NewSuccessResponse(toTaskResponse(task), response.StatOK, "")
}

// CreateTask implements Usecase
func (u *taskUsecase) CreateTask(ctx context.Context, actor entity.User, payload TaskRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if errResp := validateEnums(payload.Status, payload.Priority); errResp != nil {
		return *errResp
	}

	county, err := u.counties.FindOneById(ctx, payload.CountyID)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	task, sideEffects, err := u.createOne(ctx, actor, county, payload)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	u.logSideEffects(ctx, task.ID, sideEffects)

	return response.NewCreatedResponse(toTaskResponse(task), "")
}

// CreateBulkTasks implements Usecase. Validation is all-or-nothing: if any
// county is missing, no task is created. After validation the per-county
// sequences are independent.
func (u *taskUsecase) CreateBulkTasks(ctx context.Context, actor entity.User, payload BulkTaskRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if errResp := validateEnums(payload.Status, payload.Priority); errResp != nil {
		return *errResp
	}

	counties, err := u.counties.FindManyByIds(ctx, payload.CountyIDs)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	if len(counties) != len(payload.CountyIDs) {
		return response.NewErrorResponse(exception.ErrNotFound, http.StatusNotFound, nil, response.StatNotFound, "One or more counties not found")
	}

	created := 0
	for _, county := range counties {
		request := TaskRequest{
			Title:       payload.Title,
			Description: payload.Description,
			CountyID:    county.ID,
			Status:      payload.Status,
			Priority:    payload.Priority,
			Deadline:    payload.Deadline,
		}

		task, sideEffects, err := u.createOne(ctx, actor, county, request)
		if err != nil {
			u.logger.WithContext(ctx).Errorf("bulk create failed for county %d: %v", county.ID, err)
			continue
		}
		u.logSideEffects(ctx, task.ID, sideEffects)
		created++
	}

	return response.NewCreatedResponse(BulkCreateResponse{Created: created}, fmt.Sprintf("Created %d tasks successfully", created))
}

// createOne persists a task and runs its best-effort side effects. The
// returned side effects carry individual outcomes; a failed side effect never
// fails the creation.
func (u *taskUsecase) createOne(ctx context.Context, actor entity.User, county entity.County, payload TaskRequest) (task entity.Task, sideEffects []SideEffect, err error) {
	task = entity.Task{
		Title:       payload.Title,
		Description: payload.Description,
		CountyID:    county.ID,
		Status:      payload.Status,
		Priority:    payload.Priority,
		Deadline:    payload.Deadline,
		AssignedBy:  actor.ID,
		CreatedAt:   time.Now().In(u.location),
	}
	if task.Status == "" {
		task.Status = entity.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = entity.TaskPriorityMedium
	}

	id, err := u.taskRepository.Save(ctx, task)
	if err != nil {
		return entity.Task{}, nil, err
	}
	task.ID = id

	if county.Email != "" {
		sideEffects = append(sideEffects, SideEffect{
			Name: "assignment-email",
			Err:  u.mailer.SendTaskAssignment(county.Email, county.Name, task.Title, task.Deadline, actor.Username),
		})
	}

	sideEffects = append(sideEffects, u.notifyCountyUsers(ctx, county.ID, task.ID,
		"New Task Assigned", fmt.Sprintf("New task assigned: %s", task.Title))...)

	return task, sideEffects, nil
}

// UpdateTask implements Usecase. Only provided fields change; everything else
// is preserved as stored.
func (u *taskUsecase) UpdateTask(ctx context.Context, actor entity.User, id int64, payload UpdateTaskRequest) (resp response.Response) {
	task, errResp := u.findAccessible(ctx, actor, id)
	if errResp != nil {
		return *errResp
	}

	if payload.Title != nil {
		if *payload.Title == "" {
			return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Title cannot be empty")
		}
		task.Title = *payload.Title
	}
	if payload.Description != nil {
		task.Description = *payload.Description
	}
	if payload.Status != nil {
		if !entity.ValidTaskStatus(*payload.Status) {
			return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid status")
		}
		task.Status = *payload.Status
	}
	if payload.Priority != nil {
		if !entity.ValidTaskPriority(*payload.Priority) {
			return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid priority")
		}
		task.Priority = *payload.Priority
	}
	if payload.Deadline != nil {
		task.Deadline = *payload.Deadline
	}

	updatedAt := time.Now().In(u.location)
	task.UpdatedAt = &updatedAt

	if err := u.taskRepository.UpdateById(ctx, id, task); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toTaskResponse(task), response.StatOK, "")
}

// DeleteTask implements Usecase. Notifications referencing the task are
// removed with it.
func (u *taskUsecase) DeleteTask(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if _, err := u.taskRepository.FindOneById(ctx, id); err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "Task not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if err := u.taskRepository.DeleteById(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if err := u.notifications.DeleteManyByTaskIds(ctx, []int64{id}); err != nil {
		u.logger.WithContext(ctx).Errorf("failed to delete notifications for task %d: %v", id, err)
	}

	return response.NewSuccessResponse(nil, response.StatOK, "Task deleted successfully")
}

// SendReminder implements Usecase. The manual path has no dedup window: it
// always attempts the send, always appends a reminder record with the admin's
// id, and always notifies the admin, whatever the email outcome.
func (u *taskUsecase) SendReminder(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	task, err := u.taskRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "Task not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	county, err := u.counties.FindOneById(ctx, task.CountyID)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	emailTo := county.Email
	if emailTo == "" {
		emailTo = u.fallbackEmail
	}

	sideEffects := []SideEffect{{
		Name: "reminder-email",
		Err:  u.mailer.SendReminder(emailTo, county.Name, task.Title, task.Deadline),
	}}

	now := time.Now().In(u.location)
	if err := u.taskRepository.AppendReminder(ctx, task.ID, entity.Reminder{
		SentAt: now,
		Origin: entity.UserOrigin(actor.ID),
	}); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	taskID := task.ID
	_, err = u.notifications.Save(ctx, entity.Notification{
		UserID:    actor.ID,
		Type:      entity.NotificationTypeReminder,
		Title:     "Reminder Sent",
		Message:   fmt.Sprintf("Reminder sent for task: %s", task.Title),
		TaskID:    &taskID,
		CreatedAt: now,
	})
	sideEffects = append(sideEffects, SideEffect{Name: "admin-notification", Err: err})

	u.logSideEffects(ctx, task.ID, sideEffects)

	return response.NewSuccessResponse(nil, response.StatOK, "Reminder sent successfully")
}

// UploadForm implements Usecase. Admin supplies the blank form template.
func (u *taskUsecase) UploadForm(ctx context.Context, actor entity.User, id int64, payload UploadRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	task, err := u.taskRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "Task not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	file, err := u.storeObject(ctx, "forms", task.FormFile, payload, nil)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "File upload failed")
	}

	if err := u.taskRepository.UpdateFormFile(ctx, task.ID, file); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	task.FormFile = &file

	var sideEffects []SideEffect
	if county, err := u.counties.FindOneById(ctx, task.CountyID); err == nil {
		if county.Email != "" {
			sideEffects = append(sideEffects, SideEffect{
				Name: "form-upload-email",
				Err:  u.mailer.SendFormUpload(county.Email, county.Name, task.Title, file.OriginalName),
			})
		}
		sideEffects = append(sideEffects, u.notifyCountyUsers(ctx, county.ID, task.ID,
			"Form Available", fmt.Sprintf("Form available for task: %s", task.Title))...)
	} else {
		sideEffects = append(sideEffects, SideEffect{Name: "county-lookup", Err: err})
	}
	u.logSideEffects(ctx, task.ID, sideEffects)

	return response.NewSuccessResponse(toTaskResponse(task), response.StatOK, "Form uploaded successfully")
}

// UploadFilledForm implements Usecase. County users submit their completed
// form for their own county's tasks.
func (u *taskUsecase) UploadFilledForm(ctx context.Context, actor entity.User, id int64, payload UploadRequest) (resp response.Response) {
	task, errResp := u.findAccessible(ctx, actor, id)
	if errResp != nil {
		return *errResp
	}

	uploadedBy := actor.ID
	file, err := u.storeObject(ctx, "filled-forms", task.FilledFormFile, payload, &uploadedBy)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "File upload failed")
	}

	if err := u.taskRepository.UpdateFilledFormFile(ctx, task.ID, file); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	task.FilledFormFile = &file

	return response.NewSuccessResponse(toTaskResponse(task), response.StatOK, "Filled form uploaded successfully")
}

// DownloadForm implements Usecase
func (u *taskUsecase) DownloadForm(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	return u.download(ctx, actor, id, func(t entity.Task) *entity.TaskFile { return t.FormFile }, "Form file not found")
}

// DownloadFilledForm implements Usecase
func (u *taskUsecase) DownloadFilledForm(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	return u.download(ctx, actor, id, func(t entity.Task) *entity.TaskFile { return t.FilledFormFile }, "Filled form file not found")
}

func (u *taskUsecase) download(ctx context.Context, actor entity.User, id int64, pick func(entity.Task) *entity.TaskFile, missingMessage string) (resp response.Response) {
	task, errResp := u.findAccessible(ctx, actor, id)
	if errResp != nil {
		return *errResp
	}

	file := pick(task)
	if file == nil {
		return response.NewErrorResponse(exception.ErrNotFound, http.StatusNotFound, nil, response.StatNotFound, missingMessage)
	}

	url, err := u.storage.SignedURL(u.bucketName, file.StorageKey, downloadURLTTL)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(DownloadResponse{DownloadURL: url, FileName: file.OriginalName}, response.StatOK, "")
}

// storeObject uploads the new object and removes the previous one. A failed
// delete leaves an orphan in storage, which is logged, not fatal.
func (u *taskUsecase) storeObject(ctx context.Context, folder string, previous *entity.TaskFile, payload UploadRequest, uploadedBy *int64) (entity.TaskFile, error) {
	if previous != nil {
		if err := u.storage.DeleteObject(ctx, u.bucketName, previous.StorageKey); err != nil {
			u.logger.WithContext(ctx).Errorf("failed to delete stored object %s: %v", previous.StorageKey, err)
		}
	}

	key := fmt.Sprintf("%s/%s-%s", folder, uuid.NewString(), payload.OriginalName)
	metadata := map[string]string{"originalName": payload.OriginalName}
	if uploadedBy != nil {
		metadata["uploadedBy"] = fmt.Sprintf("%d", *uploadedBy)
	}

	if err := u.storage.PutObject(ctx, u.bucketName, key, payload.File, payload.ContentType, metadata); err != nil {
		return entity.TaskFile{}, err
	}

	return entity.TaskFile{
		OriginalName: payload.OriginalName,
		StorageKey:   key,
		UploadedAt:   time.Now().In(u.location),
		UploadedBy:   uploadedBy,
	}, nil
}

// findAccessible loads the task and applies the access rule: existence is
// confirmed first, then ownership, so a foreign task id yields 403, not 404.
func (u *taskUsecase) findAccessible(ctx context.Context, actor entity.User, id int64) (entity.Task, *response.Response) {
	task, err := u.taskRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			resp := response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "Task not found")
			return entity.Task{}, &resp
		}
		u.logger.WithContext(ctx).Error(err)
		resp := response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
		return entity.Task{}, &resp
	}

	if !policy.CanAccessCounty(actor, task.CountyID) {
		resp := response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
		return entity.Task{}, &resp
	}

	return task, nil
}

func (u *taskUsecase) notifyCountyUsers(ctx context.Context, countyID int64, taskID int64, title string, message string) (sideEffects []SideEffect) {
	countyUsers, err := u.users.FindManyCountyUsers(ctx, countyID)
	if err != nil {
		return []SideEffect{{Name: "county-user-lookup", Err: err}}
	}

	now := time.Now().In(u.location)
	for _, cu := range countyUsers {
		id := taskID
		_, err := u.notifications.Save(ctx, entity.Notification{
			UserID:    cu.ID,
			Type:      entity.NotificationTypeTaskAssigned,
			Title:     title,
			Message:   message,
			TaskID:    &id,
			CreatedAt: now,
		})
		sideEffects = append(sideEffects, SideEffect{Name: fmt.Sprintf("notification-user-%d", cu.ID), Err: err})
	}
	return
}

func (u *taskUsecase) logSideEffects(ctx context.Context, taskID int64, sideEffects []SideEffect) {
	for _, se := range sideEffects {
		if se.Err != nil {
			u.logger.WithContext(ctx).Errorf("task %d side effect %s failed: %v", taskID, se.Name, se.Err)
		}
	}
}

func validateEnums(status string, priority string) *response.Response {
	if status != "" && !entity.ValidTaskStatus(status) {
		resp := response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid status")
		return &resp
	}
	if priority != "" && !entity.ValidTaskPriority(priority) {
		resp := response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid priority")
		return &resp
	}
	return nil
}

func toTaskResponse(v entity.Task) TaskResponse {
	reminders := make([]ReminderResponse, len(v.Reminders))
	for i, rem := range v.Reminders {
		var sentBy *int64
		if id, ok := rem.Origin.UserID(); ok {
			sentBy = &id
		}
		reminders[i] = ReminderResponse{SentAt: rem.SentAt, SentBy: sentBy}
	}

	taskResponse := TaskResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		CountyID:    v.CountyID,
		Status:      v.Status,
		Priority:    v.Priority,
		Deadline:    v.Deadline,
		AssignedBy:  v.AssignedBy,
		Reminders:   reminders,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}

	if v.FormFile != nil {
		taskResponse.FormFile = &TaskFileResponse{
			OriginalName: v.FormFile.OriginalName,
			UploadedAt:   v.FormFile.UploadedAt,
		}
	}
	if v.FilledFormFile != nil {
		taskResponse.FilledFormFile = &TaskFileResponse{
			OriginalName: v.FilledFormFile.OriginalName,
			UploadedAt:   v.FilledFormFile.UploadedAt,
			UploadedBy:   v.FilledFormFile.UploadedBy,
		}
	}

	return taskResponse
}
