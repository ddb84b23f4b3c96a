package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type TaskHTTPHandler struct {
	logger      *logrus.Logger
	validator   *validator.Validate
	taskUsecase TaskUsecase
}

func NewTaskHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, validator *validator.Validate, taskUsecase TaskUsecase) {
	handler := &TaskHTTPHandler{
		logger:      logger,
		validator:   validator,
		taskUsecase: taskUsecase,
	}
	router.HandleFunc("/api/tasks", auth.Verify(handler.GetManyTasks)).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks", auth.Verify(handler.CreateTask)).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/bulk", auth.Verify(handler.CreateBulkTasks)).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{id}", auth.Verify(handler.GetOneTask)).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/{id}", auth.Verify(handler.UpdateTask)).Methods(http.MethodPut)
	router.HandleFunc("/api/tasks/{id}", auth.Verify(handler.DeleteTask)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tasks/{id}/reminder", auth.Verify(handler.SendReminder)).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{id}/upload-form", auth.Verify(handler.UploadForm)).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{id}/upload-filled-form", auth.Verify(handler.UploadFilledForm)).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{id}/download-form", auth.Verify(handler.DownloadForm)).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/{id}/download-filled-form", auth.Verify(handler.DownloadFilledForm)).Methods(http.MethodGet)
}

func (h TaskHTTPHandler) GetManyTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	filter := parseTaskFilter(r)
	resp := h.taskUsecase.GetManyTasks(ctx, actor, filter)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) GetOneTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.taskUsecase.GetOneTask(ctx, actor, taskId)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload TaskRequest

	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		resp = response.NewErrorResponse(err, http.StatusUnprocessableEntity, nil, response.StatusInvalidPayload, err.Error())
		response.JSON(w, resp)
		return
	}

	if err := h.validateRequestBody(payload); err != nil {
		resp = response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatusInvalidPayload, err.Error())
		response.JSON(w, resp)
		return
	}

	resp = h.taskUsecase.CreateTask(ctx, actor, payload)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) CreateBulkTasks(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload BulkTaskRequest

	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		resp = response.NewErrorResponse(err, http.StatusUnprocessableEntity, nil, response.StatusInvalidPayload, err.Error())
		response.JSON(w, resp)
		return
	}

	if err := h.validateRequestBody(payload); err != nil {
		resp = response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatusInvalidPayload, err.Error())
		response.JSON(w, resp)
		return
	}

	resp = h.taskUsecase.CreateBulkTasks(ctx, actor, payload)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload UpdateTaskRequest

	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		resp = response.NewErrorResponse(err, http.StatusUnprocessableEntity, nil, response.StatusInvalidPayload, err.Error())
		response.JSON(w, resp)
		return
	}

	resp = h.taskUsecase.UpdateTask(ctx, actor, taskId, payload)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.taskUsecase.DeleteTask(ctx, actor, taskId)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.taskUsecase.SendReminder(ctx, actor, taskId)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	payload, file, errResp := h.parseUpload(w, r, "formFile")
	if errResp != nil {
		response.JSON(w, *errResp)
		return
	}
	defer file.Close()

	resp := h.taskUsecase.UploadForm(ctx, actor, taskId, payload)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) UploadFilledForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	payload, file, errResp := h.parseUpload(w, r, "filledFormFile")
	if errResp != nil {
		response.JSON(w, *errResp)
		return
	}
	defer file.Close()

	resp := h.taskUsecase.UploadFilledForm(ctx, actor, taskId, payload)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) DownloadForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.taskUsecase.DownloadForm(ctx, actor, taskId)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) DownloadFilledForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	taskId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.taskUsecase.DownloadFilledForm(ctx, actor, taskId)
	response.JSON(w, resp)
}

func (h TaskHTTPHandler) parseUpload(w http.ResponseWriter, r *http.Request, fieldName string) (UploadRequest, multipart.File, *response.Response) {
	// Cap the body before ParseMultipartForm buffers it. The extra 1 KiB
	// covers multipart framing around a file at the limit.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			resp := response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatusInvalidPayload, "File exceeds the 10 MB limit")
			return UploadRequest{}, nil, &resp
		}
		resp := response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid multipart form")
		return UploadRequest{}, nil, &resp
	}

	file, header, err := r.FormFile(fieldName)
	if err != nil {
		resp := response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatusInvalidPayload, fmt.Sprintf("Missing file field '%s'", fieldName))
		return UploadRequest{}, nil, &resp
	}

	if header.Size > maxUploadSize {
		file.Close()
		resp := response.NewErrorResponse(fmt.Errorf("file too large"), http.StatusBadRequest, nil, response.StatusInvalidPayload, "File exceeds the 10 MB limit")
		return UploadRequest{}, nil, &resp
	}

	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[extension] {
		file.Close()
		resp := response.NewErrorResponse(fmt.Errorf("unsupported file type"), http.StatusBadRequest, nil, response.StatusInvalidPayload, fmt.Sprintf("File type '%s' is not allowed", extension))
		return UploadRequest{}, nil, &resp
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	payload := UploadRequest{
		File:         file,
		OriginalName: header.Filename,
		Size:         header.Size,
		Extension:    extension,
		ContentType:  contentType,
	}
	return payload, file, nil
}

func (h TaskHTTPHandler) validateRequestBody(body interface{}) (err error) {
	err = h.validator.Struct(body)
	if err == nil {
		return
	}

	errorFields := err.(validator.ValidationErrors)
	errorField := errorFields[0]
	err = fmt.Errorf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())

	return
}

func parseTaskFilter(r *http.Request) (filter TaskFilter) {
	q := r.URL.Query()

	if v := q.Get("countyId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CountyID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("priority"); v != "" {
		filter.Priority = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}

	filter.DeadlineFrom = parseTimeParam(q.Get("deadlineFrom"))
	filter.DeadlineTo = parseTimeParam(q.Get("deadlineTo"))
	filter.AssignedFrom = parseTimeParam(q.Get("assignedFrom"))
	filter.AssignedTo = parseTimeParam(q.Get("assignedTo"))

	return
}

func parseTimeParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
