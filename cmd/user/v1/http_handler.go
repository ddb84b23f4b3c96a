package user

import (
	"net/http"
	"strconv"

	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type UserHTTPHandler struct {
	logger      *logrus.Logger
	userUsecase UserUsecase
}

func NewUserHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, userUsecase UserUsecase) {
	handler := &UserHTTPHandler{
		logger:      logger,
		userUsecase: userUsecase,
	}
	router.HandleFunc("/api/users", auth.Verify(handler.GetManyUsers)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/admins", auth.Verify(handler.GetAdmins)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", auth.Verify(handler.GetOneUser)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", auth.Verify(handler.DeleteUser)).Methods(http.MethodDelete)
}

func (h UserHTTPHandler) GetManyUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.userUsecase.GetManyUsers(ctx, actor)
	response.JSON(w, resp)
}

func (h UserHTTPHandler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.userUsecase.GetAdmins(ctx, actor)
	response.JSON(w, resp)
}

func (h UserHTTPHandler) GetOneUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	userId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.userUsecase.GetOneUser(ctx, actor, userId)
	response.JSON(w, resp)
}

func (h UserHTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	userId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.userUsecase.DeleteUser(ctx, actor, userId)
	response.JSON(w, resp)
}
