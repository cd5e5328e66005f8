package user

import (
	"time"

	"github.com/google/uuid"

	domainUser "patroltrack/internal/domain/user"
	"patroltrack/pkg/utils"
)

// Request DTOs

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Role     string  `json:"role" validate:"required,user_role"`
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	ImageKey *string `json:"image_key" validate:"omitempty,max=512"`
}

// Response DTOs

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Address  *string   `json:"address,omitempty"`
	ImageKey *string   `json:"image_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	User   *UserResponse    `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		FullName:  u.FullName,
		Email:     u.Email,
		Address:   u.Address,
		ImageKey:  u.ImageKey,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserResponses(users []*domainUser.User) []*UserResponse {
	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(u))
	}
	return responses
}
