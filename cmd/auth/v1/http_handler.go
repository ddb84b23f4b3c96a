package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type AuthHTTPHandler struct {
	logger      *logrus.Logger
	validator   *validator.Validate
	authUsecase AuthUsecase
}

func NewAuthHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, validator *validator.Validate, authUsecase AuthUsecase) {
	handler := &AuthHTTPHandler{
		logger:      logger,
		validator:   validator,
		authUsecase: authUsecase,
	}
	router.HandleFunc("/api/auth/login", handler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", auth.Verify(handler.Register)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", auth.Verify(handler.Me)).Methods(http.MethodGet)
}

func (h AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload LoginRequest

	ctx := r.Context()

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

	resp = h.authUsecase.Login(ctx, payload)
	response.JSON(w, resp)
}

func (h AuthHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload RegisterRequest

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

	resp = h.authUsecase.Register(ctx, actor, payload)
	response.JSON(w, resp)
}

func (h AuthHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.authUsecase.Me(ctx, actor)
	response.JSON(w, resp)
}

func (h AuthHTTPHandler) validateRequestBody(body interface{}) (err error) {
	err = h.validator.Struct(body)
	if err == nil {
		return
	}

	errorFields := err.(validator.ValidationErrors)
	errorField := errorFields[0]
	err = fmt.Errorf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())

	return
}
