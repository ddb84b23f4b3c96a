package middleware

import (
	"net/http"
	"runtime/debug"

	"county-task-api/pkg/exception"
	"county-task-api/pkg/response"

	"github.com/sirupsen/logrus"
)

type Recovery struct {
	logger     *logrus.Logger
	printStack bool
}

func NewRecovery(logger *logrus.Logger, printStack bool) *Recovery {
	return &Recovery{
		logger:     logger,
		printStack: printStack,
	}
}

func (m *Recovery) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				entry := m.logger.WithContext(r.Context()).WithField("panic", rec)
				if m.printStack {
					entry = entry.WithField("stack", string(debug.Stack()))
				}
				entry.Error("recovered from panic")

				resp := response.NewErrorResponse(exception.ErrInternalServer, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
				response.JSON(w, resp)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
