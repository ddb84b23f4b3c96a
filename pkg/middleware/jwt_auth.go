package middleware

import (
	"context"
	"net/http"
	"strings"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// Claims is the payload carried by bearer tokens.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// UserFinder resolves the token subject against current state, so role and
// county scope reflect the database, not the token issue time.
type UserFinder interface {
	FindOneById(ctx context.Context, id int64) (entity.User, error)
}

type jwtAuth struct {
	logger *logrus.Logger
	secret []byte
	users  UserFinder
}

func NewJWTAuth(logger *logrus.Logger, secret string, users UserFinder) RouteMiddleware {
	return &jwtAuth{
		logger: logger,
		secret: []byte(secret),
		users:  users,
	}
}

func (m *jwtAuth) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			resp := response.NewErrorResponse(exception.ErrUnauthorized, http.StatusUnauthorized, nil, response.StatUnauthorized, "Authorization header required")
			response.JSON(w, resp)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			m.logger.WithContext(ctx).Warn("invalid bearer token: ", err)
			resp := response.NewErrorResponse(exception.ErrUnauthorized, http.StatusUnauthorized, nil, response.StatUnauthorized, "Invalid token")
			response.JSON(w, resp)
			return
		}

		user, err := m.users.FindOneById(ctx, claims.UserID)
		if err != nil {
			resp := response.NewErrorResponse(exception.ErrUnauthorized, http.StatusUnauthorized, nil, response.StatUnauthorized, "Invalid token")
			response.JSON(w, resp)
			return
		}

		next(w, r.WithContext(WithUser(ctx, user)))
	}
}

func WithUser(ctx context.Context, user entity.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user injected by Verify.
func UserFromContext(ctx context.Context) (entity.User, bool) {
	user, ok := ctx.Value(userContextKey).(entity.User)
	return user, ok
}
