package user

import (
	"context"
	"net/http"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"

	"github.com/sirupsen/logrus"
)

type UserUsecase interface {
	GetManyUsers(ctx context.Context, actor entity.User) (resp response.Response)
	GetAdmins(ctx context.Context, actor entity.User) (resp response.Response)
	GetOneUser(ctx context.Context, actor entity.User, id int64) (resp response.Response)
	DeleteUser(ctx context.Context, actor entity.User, id int64) (resp response.Response)
}

type userUsecase struct {
	logger         *logrus.Logger
	userRepository UserRepository
}

func NewUserUsecase(logger *logrus.Logger, userRepository UserRepository) UserUsecase {
	return &userUsecase{
		logger:         logger,
		userRepository: userRepository,
	}
}

// GetManyUsers implements Usecase
func (u *userUsecase) GetManyUsers(ctx context.Context, actor entity.User) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	result, err := u.userRepository.FindMany(ctx)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toUserResponses(result), response.StatOK, "")
}

// GetAdmins implements Usecase
func (u *userUsecase) GetAdmins(ctx context.Context, actor entity.User) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	result, err := u.userRepository.FindManyByRole(ctx, entity.RoleAdmin)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toUserResponses(result), response.StatOK, "")
}

// GetOneUser implements Usecase
func (u *userUsecase) GetOneUser(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	result, err := u.userRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "User not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toUserResponse(result), response.StatOK, "")
}

// DeleteUser implements Usecase. Self-deletion is rejected.
func (u *userUsecase) DeleteUser(ctx context.Context, actor entity.User, id int64) (resp response.Response) {
	if !policy.IsAdmin(actor) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	target, err := u.userRepository.FindOneById(ctx, id)
	if err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "User not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	if target.ID == actor.ID {
		return response.NewErrorResponse(exception.ErrBadRequest, http.StatusBadRequest, nil, response.StatusInvalidPayload, "Cannot delete your own account")
	}

	if err := u.userRepository.DeleteById(ctx, id); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	u.logger.WithContext(ctx).Infof("admin %s deleted user %s (%s)", actor.Username, target.Username, target.Email)

	return response.NewSuccessResponse(nil, response.StatOK, "User deleted successfully")
}

func toUserResponse(v entity.User) UserResponse {
	return UserResponse{
		ID:        v.ID,
		Username:  v.Username,
		Email:     v.Email,
		Role:      v.Role,
		CountyID:  v.CountyID,
		CreatedAt: v.CreatedAt,
	}
}

func toUserResponses(result []entity.User) []UserResponse {
	usersResponse := make([]UserResponse, len(result))
	for i, v := range result {
		usersResponse[i] = toUserResponse(v)
	}
	return usersResponse
}
