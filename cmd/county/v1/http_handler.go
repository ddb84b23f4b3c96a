package county

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type CountyHTTPHandler struct {
	logger        *logrus.Logger
	validator     *validator.Validate
	countyUsecase CountyUsecase
}

func NewCountyHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, validator *validator.Validate, countyUsecase CountyUsecase) {
	handler := &CountyHTTPHandler{
		logger:        logger,
		validator:     validator,
		countyUsecase: countyUsecase,
	}
	router.HandleFunc("/api/counties", auth.Verify(handler.GetManyCounties)).Methods(http.MethodGet)
	router.HandleFunc("/api/counties", auth.Verify(handler.CreateCounty)).Methods(http.MethodPost)
	router.HandleFunc("/api/counties/{id}", auth.Verify(handler.GetOneCounty)).Methods(http.MethodGet)
	router.HandleFunc("/api/counties/{id}", auth.Verify(handler.UpdateCounty)).Methods(http.MethodPut)
	router.HandleFunc("/api/counties/{id}", auth.Verify(handler.DeleteCounty)).Methods(http.MethodDelete)
}

func (h CountyHTTPHandler) GetManyCounties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	resp := h.countyUsecase.GetManyCounties(ctx, actor)
	response.JSON(w, resp)
}

func (h CountyHTTPHandler) GetOneCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	countyId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.countyUsecase.GetOneCounty(ctx, actor, countyId)
	response.JSON(w, resp)
}

func (h CountyHTTPHandler) CreateCounty(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload CountyRequest

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

	resp = h.countyUsecase.CreateCounty(ctx, actor, payload)
	response.JSON(w, resp)
}

func (h CountyHTTPHandler) UpdateCounty(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload CountyRequest

	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	countyId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

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

	resp = h.countyUsecase.UpdateCounty(ctx, actor, countyId, payload)
	response.JSON(w, resp)
}

func (h CountyHTTPHandler) DeleteCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	countyId, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	resp := h.countyUsecase.DeleteCounty(ctx, actor, countyId)
	response.JSON(w, resp)
}

func (h CountyHTTPHandler) validateRequestBody(body interface{}) (err error) {
	err = h.validator.Struct(body)
	if err == nil {
		return
	}

	errorFields := err.(validator.ValidationErrors)
	errorField := errorFields[0]
	err = fmt.Errorf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())

	return
}
