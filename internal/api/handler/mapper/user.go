package mapper

import (
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"
	"etlapi/internal/api/models"
)

type UserMapper interface {
	DtoToUpdate(req request.UpdateUser, user *models.User)
	EntityToUserResponse(user models.User) response.UserResponseDTO
}

// UserMapperImpl implements UserMapper
type UserMapperImpl struct{}

func (m UserMapperImpl) DtoToUpdate(req request.UpdateUser, user *models.User) {
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
}

func (m UserMapperImpl) EntityToUserResponse(user models.User) response.UserResponseDTO {
	return response.UserResponseDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Active:    user.Active,
	}
}

// NewUserMapper creates a new instance of UserMapperImpl
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}
