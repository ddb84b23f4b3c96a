package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/middleware"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user repository this package needs.
type UserStore interface {
	FindOneByEmail(ctx context.Context, email string) (entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	Save(ctx context.Context, user entity.User) (int64, error)
}

type CountyStore interface {
	FindOneById(ctx context.Context, id int64) (entity.County, error)
}

type AuthUsecase interface {
	Login(ctx context.Context, payload LoginRequest) (resp response.Response)
	Register(ctx context.Context, actor entity.User, payload RegisterRequest) (resp response.Response)
	Me(ctx context.Context, actor entity.User) (resp response.Response)
}

type authUsecase struct {
	logger    *logrus.Logger
	location  *time.Location
	secret    []byte
	expiresIn time.Duration
	users     UserStore
	counties  CountyStore
}

func NewAuthUsecase(logger *logrus.Logger, location *time.Location, secret string, expiresIn time.Duration, users UserStore, counties CountyStore) AuthUsecase {
	return &authUsecase{
		logger:    logger,
		location:  location,
		secret:    []byte(secret),
		expiresIn: expiresIn,
		users:     users,
		counties:  counties,
	}
}

// Login implements Usecase
func (u *authUsecase) Login(ctx context.Context, payload LoginRequest) (resp response.Response) {
	user, err := u.users.FindOneByEmail(ctx, strings.ToLower(payload.Email))
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid credentials")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid credentials")
	}

	token, err := u.generateToken(user.ID)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(LoginResponse{Token: token, User: toProfile(user)}, response.StatOK, "")
}

// Register implements Usecase. Public registration is disabled; only admins
// create accounts, and no token is issued for the new user.
func (u *authUsecase) Register(ctx context.Context, actor entity.User, payload RegisterRequest) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if !entity.ValidRole(payload.Role) {
		return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Invalid role")
	}

	if !strongPassword(payload.Password) {
		return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload,
			"Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	}

	email := strings.ToLower(payload.Email)

	var countyID *int64
	if payload.Role == entity.RoleCountyUser {
		if payload.CountyID == nil {
			return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "County ID is required for county users")
		}
		if _, err := u.counties.FindOneById(ctx, *payload.CountyID); err != nil {
			if err == exception.ErrNotFound {
				return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
			}
			u.logger.WithContext(ctx).Error(err)
			return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
		}
		countyID = payload.CountyID
	}

	exists, err := u.users.ExistsByUsernameOrEmail(ctx, payload.Username, email)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	if exists {
		return response.NewErrorResponse(exception.ErrConflict, http.StatusBadRequest, nil, response.StatConflict, "User with this email or username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	newUser := entity.User{
		Username:     payload.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         payload.Role,
		CountyID:     countyID,
		CreatedAt:    time.Now().In(u.location),
	}

	id, err := u.users.Save(ctx, newUser)
	if err != nil {
		if err == exception.ErrConflict {
			return response.NewErrorResponse(err, http.StatusBadRequest, nil, response.StatConflict, "User with this email or username already exists")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}
	newUser.ID = id

	u.logger.WithContext(ctx).Infof("admin %s created user %s (%s) with role %s", actor.Username, newUser.Username, newUser.Email, newUser.Role)

	return response.NewCreatedResponse(toProfile(newUser), "User created successfully")
}

// Me implements Usecase
func (u *authUsecase) Me(ctx context.Context, actor entity.User) (resp response.Response) {
	return response.NewSuccessResponse(toProfile(actor), response.StatOK, "")
}

func (u *authUsecase) generateToken(userID int64) (string, error) {
	now := time.Now().In(u.location)
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.expiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
}

func strongPassword(password string) bool {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune("@$!%*?&", c):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

func toProfile(user entity.User) Profile {
	return Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		CountyID: user.CountyID,
	}
}
