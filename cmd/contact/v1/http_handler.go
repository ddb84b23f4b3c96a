package contact

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

type ContactHTTPHandler struct {
	logger         *logrus.Logger
	validator      *validator.Validate
	contactUsecase ContactUsecase
}

func NewContactHTTPHandler(logger *logrus.Logger, router *mux.Router, auth middleware.RouteMiddleware, validator *validator.Validate, contactUsecase ContactUsecase) {
	handler := &ContactHTTPHandler{
		logger:         logger,
		validator:      validator,
		contactUsecase: contactUsecase,
	}
	router.HandleFunc("/api/contacts/{countyId}", auth.Verify(handler.GetContacts)).Methods(http.MethodGet)
	router.HandleFunc("/api/contacts/{countyId}", auth.Verify(handler.UpdateContacts)).Methods(http.MethodPut)
}

func (h ContactHTTPHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	countyId, _ := strconv.ParseInt(mux.Vars(r)["countyId"], 10, 64)
	resp := h.contactUsecase.GetContacts(ctx, actor, countyId)
	response.JSON(w, resp)
}

func (h ContactHTTPHandler) UpdateContacts(w http.ResponseWriter, r *http.Request) {
	var resp response.Response
	var payload UpdateContactsRequest

	ctx := r.Context()
	actor, _ := middleware.UserFromContext(ctx)
	countyId, _ := strconv.ParseInt(mux.Vars(r)["countyId"], 10, 64)

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

	resp = h.contactUsecase.UpdateContacts(ctx, actor, countyId, payload)
	response.JSON(w, resp)
}

func (h ContactHTTPHandler) validateRequestBody(body interface{}) (err error) {
	err = h.validator.Struct(body)
	if err == nil {
		return
	}

	errorFields := err.(validator.ValidationErrors)
	errorField := errorFields[0]
	err = fmt.Errorf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())

	return
}
