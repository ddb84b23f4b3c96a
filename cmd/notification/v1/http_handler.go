package notification

import (
	"net/http"
	"strconv"

	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type NotificationHTTPHandler struct {
	logger              *logrus.Logger
	notificationUsecase NotificationUsecase
}

func NewNotificationHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, notificationUsecase NotificationUsecase) {
	handler := &NotificationHTTPHandler{
		logger:              logger,
		notificationUsecase: notificationUsecase,
	}

	// fixed paths before the {id} pattern so mux never shadows them
	router.HandleFunc("/api/notifications", auth.Verify(handler.GetManyNotifications)).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/upcoming", auth.Verify(handler.GetUpcomingTasks)).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/read-all", auth.Verify(handler.MarkAllRead)).Methods(http.MethodPut)
	router.HandleFunc("/api/notifications/{id}/read", auth.Verify(handler.MarkRead)).Methods(http.MethodPut)
}

func (h NotificationHTTPHandler) GetManyNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.notificationUsecase.GetManyNotifications(ctx, actor)
	response.JSON(w, resp)
}

func (h NotificationHTTPHandler) GetUpcomingTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.notificationUsecase.GetUpcomingTasks(ctx, actor)
	response.JSON(w, resp)
}

func (h NotificationHTTPHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	notificationId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.notificationUsecase.MarkRead(ctx, actor, notificationId)
	response.JSON(w, resp)
}

func (h NotificationHTTPHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.notificationUsecase.MarkAllRead(ctx, actor)
	response.JSON(w, resp)
}
